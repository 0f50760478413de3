package budget

import (
	"fmt"
	"time"
)

// Budget is a spend allocation tracked against usage facts. It is mutated
// only by recomputation against fresh spend, never edited directly.
type Budget struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"` // > 0
	Period         Period    `json:"period"`
	Scope          ScopeKind `json:"scope"`
	Target         string    `json:"target"` // team id / service name; empty for organization
	AlertThreshold float64   `json:"alert_threshold"` // percent, (0,100]
	CurrentSpend   float64   `json:"current_spend"`
	Utilization    float64   `json:"utilization_percentage"` // derived, spend/amount*100
	Status         string    `json:"status"`
	PeriodStart    time.Time `json:"period_start"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Period is the budget accounting period
type Period string

const (
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// ScopeKind is the level a budget applies to
type ScopeKind string

const (
	ScopeTeam         ScopeKind = "team"
	ScopeService      ScopeKind = "service"
	ScopeOrganization ScopeKind = "organization"
)

// Budget status
const (
	StatusActive   = "active"
	StatusExceeded = "exceeded"
)

// Validate checks the budget invariants
func (b *Budget) Validate() error {
	if b.Amount <= 0 {
		return fmt.Errorf("budget amount must be positive, got %f", b.Amount)
	}
	switch b.Period {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
	default:
		return fmt.Errorf("invalid budget period: %s", b.Period)
	}
	switch b.Scope {
	case ScopeTeam, ScopeService, ScopeOrganization:
	default:
		return fmt.Errorf("invalid budget scope: %s", b.Scope)
	}
	if b.AlertThreshold <= 0 || b.AlertThreshold > 100 {
		return fmt.Errorf("alert threshold must be in (0,100], got %f", b.AlertThreshold)
	}
	return nil
}

// PeriodEnd returns the end of the accounting period containing start
func (b *Budget) PeriodEnd() time.Time {
	switch b.Period {
	case PeriodQuarterly:
		return b.PeriodStart.AddDate(0, 3, 0)
	case PeriodYearly:
		return b.PeriodStart.AddDate(1, 0, 0)
	default:
		return b.PeriodStart.AddDate(0, 1, 0)
	}
}

// DaysRemaining returns whole days until the period end, floored at 0
func (b *Budget) DaysRemaining(now time.Time) int {
	remaining := int(b.PeriodEnd().Sub(now).Hours() / 24)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BudgetAlert is raised when utilization crosses a threshold
type BudgetAlert struct {
	ID          string    `json:"id"`
	BudgetID    string    `json:"budget_id"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	TriggerPct  float64   `json:"trigger_percentage"`
	TriggerAmt  float64   `json:"trigger_amount"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Alert types
const (
	AlertThresholdExceeded = "threshold_exceeded"
	AlertBudgetExceeded    = "budget_exceeded"
	AlertForecastExceeded  = "forecast_exceeded"
)

// Alert severity levels
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert status, transitions are monotonic: active -> acknowledged -> resolved
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

var alertRank = map[string]int{
	AlertStatusActive:       0,
	AlertStatusAcknowledged: 1,
	AlertStatusResolved:     2,
}

// TransitionStatus advances the alert status. Reverse transitions are
// rejected to keep the lifecycle monotonic.
func (a *BudgetAlert) TransitionStatus(to string) error {
	toRank, ok := alertRank[to]
	if !ok {
		return fmt.Errorf("unknown alert status: %s", to)
	}
	if toRank <= alertRank[a.Status] {
		return fmt.Errorf("alert status cannot move from %s to %s", a.Status, to)
	}
	a.Status = to
	return nil
}

// Filter contains budget listing filters
type Filter struct {
	Scope  ScopeKind
	Target string
	Status string
}
