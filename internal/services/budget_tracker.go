package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/metrics"
	"github.com/pratik-mahalle/costpilot/internal/pkg/stats"
)

// utilizationPrecision is the number of decimal places utilization
// percentages are rounded to, half up
const utilizationPrecision = 4

// BudgetTracker maintains budget state against fresh spend and raises
// alerts when thresholds are crossed. Recomputation runs under a
// per-budget lock so concurrent ingestions cannot lose updates or emit
// duplicate alerts.
type BudgetTracker struct {
	repo       budget.Repository
	store      usage.Store
	forecaster *Forecaster
	logger     *logger.Logger

	locks sync.Map // budget id -> *sync.Mutex
}

// NewBudgetTracker creates a new budget tracker
func NewBudgetTracker(repo budget.Repository, store usage.Store, forecaster *Forecaster, log *logger.Logger) *BudgetTracker {
	return &BudgetTracker{
		repo:       repo,
		store:      store,
		forecaster: forecaster,
		logger:     log,
	}
}

func (t *BudgetTracker) lockFor(budgetID string) *sync.Mutex {
	mu, _ := t.locks.LoadOrStore(budgetID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Create validates and persists a new budget
func (t *BudgetTracker) Create(ctx context.Context, b *budget.Budget) (*budget.Budget, error) {
	if err := b.Validate(); err != nil {
		return nil, errors.InvalidBudget(err.Error())
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = budget.StatusActive
	}
	b.CreatedAt = time.Now().UTC()

	if err := t.repo.CreateBudget(ctx, b); err != nil {
		t.logger.ErrorWithErr(err, "Failed to create budget")
		return nil, errors.DatabaseError("failed to create budget", err)
	}

	t.logger.WithFields(map[string]interface{}{
		"budget_id": b.ID,
		"name":      b.Name,
		"amount":    b.Amount,
		"period":    b.Period,
		"scope":     b.Scope,
	}).Info("Budget created")

	return b, nil
}

// Get retrieves a budget by id
func (t *BudgetTracker) Get(ctx context.Context, id string) (*budget.Budget, error) {
	return t.repo.GetBudget(ctx, id)
}

// List retrieves budgets matching the filter
func (t *BudgetTracker) List(ctx context.Context, filter budget.Filter) ([]*budget.Budget, error) {
	return t.repo.ListBudgets(ctx, filter)
}

// ListAlerts retrieves alerts for a budget
func (t *BudgetTracker) ListAlerts(ctx context.Context, budgetID, status string) ([]*budget.BudgetAlert, error) {
	return t.repo.ListAlerts(ctx, budgetID, status)
}

// UpdateAlertStatus advances an alert through its monotonic lifecycle
func (t *BudgetTracker) UpdateAlertStatus(ctx context.Context, alertID, status string) (*budget.BudgetAlert, error) {
	a, err := t.repo.GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if err := a.TransitionStatus(status); err != nil {
		return nil, errors.Conflict(err.Error())
	}
	a.UpdatedAt = time.Now().UTC()
	if err := t.repo.UpdateAlert(ctx, a); err != nil {
		return nil, errors.DatabaseError("failed to update alert", err)
	}
	return a, nil
}

// Recompute refreshes a budget's utilization from currentSpend, persists
// the new state and emits alerts for crossings since the last
// recomputation. At most one recomputation runs per budget id at a time.
func (t *BudgetTracker) Recompute(ctx context.Context, budgetID string, currentSpend float64) (*budget.Budget, []*budget.BudgetAlert, error) {
	mu := t.lockFor(budgetID)
	mu.Lock()
	defer mu.Unlock()

	b, err := t.repo.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, nil, err
	}
	if b.Amount <= 0 {
		return nil, nil, errors.InvalidBudget("budget amount must be positive")
	}

	forecastExceeds := t.forecastExceeds(ctx, b)
	alerts := t.apply(b, currentSpend, forecastExceeds)

	b.UpdatedAt = time.Now().UTC()
	if err := t.repo.UpdateBudget(ctx, b); err != nil {
		return nil, nil, errors.DatabaseError("failed to update budget", err)
	}

	emitted := make([]*budget.BudgetAlert, 0, len(alerts))
	for _, a := range alerts {
		// Skip forecast alerts when one is already open for this budget
		if a.Type == budget.AlertForecastExceeded {
			open, err := t.repo.ListAlerts(ctx, b.ID, budget.AlertStatusActive)
			if err == nil && hasAlertType(open, budget.AlertForecastExceeded) {
				continue
			}
		}
		if err := t.repo.CreateAlert(ctx, a); err != nil {
			t.logger.ErrorWithErr(err, "Failed to persist budget alert")
			continue
		}
		emitted = append(emitted, a)
		metrics.RecordBudgetAlert(a.Type, a.Severity)
		t.logger.WithFields(map[string]interface{}{
			"budget_id":   b.ID,
			"alert_type":  a.Type,
			"severity":    a.Severity,
			"utilization": a.TriggerPct,
		}).Info("Budget alert emitted")
	}

	metrics.SetBudgetUtilization(b.ID, b.Utilization)

	t.logger.WithFields(map[string]interface{}{
		"budget_id":      b.ID,
		"utilization":    b.Utilization,
		"status":         b.Status,
		"days_remaining": b.DaysRemaining(time.Now().UTC()),
	}).Debug("Budget recomputed")

	return b, emitted, nil
}

// RecomputeFromStore derives current spend from the usage store for the
// budget's scope and period, then recomputes
func (t *BudgetTracker) RecomputeFromStore(ctx context.Context, budgetID string) (*budget.Budget, []*budget.BudgetAlert, error) {
	b, err := t.repo.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, nil, err
	}

	series, err := t.store.FetchUsage(ctx, scopeFor(b), b.PeriodStart, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}

	return t.Recompute(ctx, budgetID, series.Total())
}

// apply performs the pure recomputation: new utilization, status and the
// alerts for crossings relative to the budget's previous state
func (t *BudgetTracker) apply(b *budget.Budget, currentSpend float64, forecastExceeds bool) []*budget.BudgetAlert {
	prevUtil := b.Utilization
	newUtil := stats.RoundHalfUp(currentSpend/b.Amount*100, utilizationPrecision)

	b.CurrentSpend = currentSpend
	b.Utilization = newUtil
	if newUtil >= 100 {
		b.Status = budget.StatusExceeded
	} else {
		b.Status = budget.StatusActive
	}

	var alerts []*budget.BudgetAlert

	if prevUtil < b.AlertThreshold && newUtil >= b.AlertThreshold {
		alerts = append(alerts, t.newAlert(b, budget.AlertThresholdExceeded,
			t.severityFor(b, newUtil, forecastExceeds)))
	}

	if prevUtil < 100 && newUtil >= 100 {
		sev := budget.SeverityHigh
		if forecastExceeds {
			sev = budget.SeverityCritical
		}
		alerts = append(alerts, t.newAlert(b, budget.AlertBudgetExceeded, sev))
	}

	if forecastExceeds && newUtil < 100 {
		alerts = append(alerts, t.newAlert(b, budget.AlertForecastExceeded, budget.SeverityCritical))
	}

	return alerts
}

// severityFor escalates with how far past the alert threshold utilization
// has moved: low at threshold, medium at the threshold/100 midpoint, high
// at or beyond 100, critical when the period forecast also exceeds
func (t *BudgetTracker) severityFor(b *budget.Budget, util float64, forecastExceeds bool) string {
	midpoint := (b.AlertThreshold + 100) / 2
	switch {
	case forecastExceeds:
		return budget.SeverityCritical
	case util >= 100:
		return budget.SeverityHigh
	case util >= midpoint:
		return budget.SeverityMedium
	default:
		return budget.SeverityLow
	}
}

func (t *BudgetTracker) newAlert(b *budget.Budget, alertType, severity string) *budget.BudgetAlert {
	return &budget.BudgetAlert{
		ID:         uuid.New().String(),
		BudgetID:   b.ID,
		Type:       alertType,
		Severity:   severity,
		TriggerPct: b.Utilization,
		TriggerAmt: b.CurrentSpend,
		Message:    alertMessage(b, alertType),
		Status:     budget.AlertStatusActive,
		CreatedAt:  time.Now().UTC(),
	}
}

// forecastExceeds projects spend to the end of the budget period with a
// linear fit over the period's daily series. Forecast failures never block
// a recomputation.
func (t *BudgetTracker) forecastExceeds(ctx context.Context, b *budget.Budget) bool {
	if t.store == nil || t.forecaster == nil {
		return false
	}

	now := time.Now().UTC()
	series, err := t.store.FetchUsage(ctx, scopeFor(b), b.PeriodStart, now)
	if err != nil || series.Len() < 2 {
		return false
	}

	remaining := b.DaysRemaining(now)
	if remaining == 0 {
		return false
	}

	result, err := t.forecaster.Forecast(series, analytics.MethodLinear, remaining, 0.95)
	if err != nil {
		return false
	}

	return series.Total()+result.Total() > b.Amount
}

func scopeFor(b *budget.Budget) usage.Scope {
	switch b.Scope {
	case budget.ScopeTeam:
		return usage.Scope{TeamID: b.Target}
	case budget.ScopeService:
		return usage.Scope{ServiceName: b.Target}
	default:
		return usage.Scope{}
	}
}

func alertMessage(b *budget.Budget, alertType string) string {
	switch alertType {
	case budget.AlertBudgetExceeded:
		return "Budget " + b.Name + " has been exceeded"
	case budget.AlertForecastExceeded:
		return "Budget " + b.Name + " is forecast to exceed its allocation before period end"
	default:
		return "Budget " + b.Name + " has crossed its alert threshold"
	}
}

func hasAlertType(alerts []*budget.BudgetAlert, alertType string) bool {
	for _, a := range alerts {
		if a.Type == alertType {
			return true
		}
	}
	return false
}
