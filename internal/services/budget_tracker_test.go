package services

import (
	"context"
	"testing"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/testutil"
)

func newTestTracker(repo budget.Repository, store usage.Store) *BudgetTracker {
	log := testutil.NewLogger()
	return NewBudgetTracker(repo, store, NewForecaster(7, log), log)
}

func seedBudget(t *testing.T, repo *testutil.MockBudgetRepository, b *budget.Budget) {
	t.Helper()
	if err := repo.CreateBudget(context.Background(), b); err != nil {
		t.Fatalf("Failed to seed budget: %v", err)
	}
}

func monthlyBudget(id string, amount, threshold float64) *budget.Budget {
	return &budget.Budget{
		ID:             id,
		Name:           "engineering-monthly",
		Amount:         amount,
		Period:         budget.PeriodMonthly,
		Scope:          budget.ScopeTeam,
		Target:         "team-eng",
		AlertThreshold: threshold,
		Status:         budget.StatusActive,
		PeriodStart:    time.Now().UTC().AddDate(0, 0, -10),
		CreatedAt:      time.Now().UTC(),
	}
}

func TestCreateBudget(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	tracker := newTestTracker(repo, testutil.NewMockUsageStore())
	ctx := context.Background()

	t.Run("valid budget", func(t *testing.T) {
		b := monthlyBudget("", 1000, 80)
		created, err := tracker.Create(ctx, b)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID == "" {
			t.Error("Expected generated budget id")
		}
		if created.Status != budget.StatusActive {
			t.Errorf("Expected active status, got %s", created.Status)
		}
	})

	invalid := []struct {
		name   string
		mutate func(*budget.Budget)
	}{
		{name: "zero amount", mutate: func(b *budget.Budget) { b.Amount = 0 }},
		{name: "negative amount", mutate: func(b *budget.Budget) { b.Amount = -50 }},
		{name: "bad period", mutate: func(b *budget.Budget) { b.Period = "weekly" }},
		{name: "bad scope", mutate: func(b *budget.Budget) { b.Scope = "cluster" }},
		{name: "threshold over 100", mutate: func(b *budget.Budget) { b.AlertThreshold = 120 }},
		{name: "zero threshold", mutate: func(b *budget.Budget) { b.AlertThreshold = 0 }},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			b := monthlyBudget("", 1000, 80)
			tt.mutate(b)
			_, err := tracker.Create(ctx, b)
			if !errors.IsCode(err, errors.ErrCodeInvalidBudget) {
				t.Errorf("Expected INVALID_BUDGET, got %v", err)
			}
		})
	}
}

func TestRecomputeThresholdCrossing(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	tracker := newTestTracker(repo, testutil.NewMockUsageStore())
	ctx := context.Background()

	seedBudget(t, repo, monthlyBudget("b1", 1000, 80))

	// 850 of 1000 crosses the 80% threshold
	b, alerts, err := tracker.Recompute(ctx, "b1", 850)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if b.Utilization != 85.0 {
		t.Errorf("Expected utilization 85.0, got %f", b.Utilization)
	}
	if b.Status != budget.StatusActive {
		t.Errorf("Expected active status below 100%%, got %s", b.Status)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Type != budget.AlertThresholdExceeded {
		t.Errorf("Expected threshold_exceeded, got %s", alerts[0].Type)
	}
	if alerts[0].Severity != budget.SeverityLow {
		t.Errorf("Expected low severity at 85%%, got %s", alerts[0].Severity)
	}
	if alerts[0].TriggerPct != 85.0 {
		t.Errorf("Expected trigger percentage 85.0, got %f", alerts[0].TriggerPct)
	}

	// creeping to 86% stays above the threshold, no new crossing
	_, alerts, err = tracker.Recompute(ctx, "b1", 860)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Expected no duplicate alert, got %d", len(alerts))
	}
}

func TestRecomputeBudgetExceeded(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	tracker := newTestTracker(repo, testutil.NewMockUsageStore())
	ctx := context.Background()

	seedBudget(t, repo, monthlyBudget("b1", 1000, 80))

	b, alerts, err := tracker.Recompute(ctx, "b1", 1000)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if b.Utilization != 100.0 {
		t.Errorf("Expected utilization 100.0, got %f", b.Utilization)
	}
	if b.Status != budget.StatusExceeded {
		t.Errorf("Expected exceeded status, got %s", b.Status)
	}

	// one jump crosses both the threshold and 100%
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(alerts))
	}
	types := map[string]bool{}
	for _, a := range alerts {
		types[a.Type] = true
	}
	if !types[budget.AlertThresholdExceeded] || !types[budget.AlertBudgetExceeded] {
		t.Errorf("Expected threshold and budget exceeded alerts, got %v", types)
	}
}

func TestRecomputeSeverityEscalation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		spend        float64
		wantSeverity string
	}{
		{name: "just past threshold", spend: 820, wantSeverity: budget.SeverityLow},
		{name: "past the midpoint", spend: 920, wantSeverity: budget.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockBudgetRepository()
			tracker := newTestTracker(repo, testutil.NewMockUsageStore())
			seedBudget(t, repo, monthlyBudget("b1", 1000, 80))

			_, alerts, err := tracker.Recompute(ctx, "b1", tt.spend)
			if err != nil {
				t.Fatalf("Recompute failed: %v", err)
			}
			if len(alerts) != 1 {
				t.Fatalf("Expected 1 alert, got %d", len(alerts))
			}
			if alerts[0].Severity != tt.wantSeverity {
				t.Errorf("Expected %s severity, got %s", tt.wantSeverity, alerts[0].Severity)
			}
		})
	}
}

func TestRecomputeUtilizationRounding(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	tracker := newTestTracker(repo, testutil.NewMockUsageStore())
	ctx := context.Background()

	seedBudget(t, repo, monthlyBudget("b1", 3000, 99))

	// 1000/3000*100 = 33.3333... rounds half up at 4 decimals
	b, _, err := tracker.Recompute(ctx, "b1", 1000)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if b.Utilization != 33.3333 {
		t.Errorf("Expected utilization 33.3333, got %f", b.Utilization)
	}
}

func TestRecomputeInvalidAmount(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	tracker := newTestTracker(repo, testutil.NewMockUsageStore())
	ctx := context.Background()

	// seeded directly to bypass Create validation
	b := monthlyBudget("b1", 1000, 80)
	b.Amount = 0
	repo.Budgets["b1"] = b

	_, _, err := tracker.Recompute(ctx, "b1", 500)
	if !errors.IsCode(err, errors.ErrCodeInvalidBudget) {
		t.Errorf("Expected INVALID_BUDGET, got %v", err)
	}
}

func TestRecomputeForecastAlert(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	store := testutil.NewMockUsageStore()
	tracker := newTestTracker(repo, store)
	ctx := context.Background()

	b := monthlyBudget("b1", 1000, 80)
	seedBudget(t, repo, b)

	// ten days of steeply rising spend; the linear projection over the
	// remaining days blows through the budget long before period end
	scope := usage.Scope{TeamID: "team-eng"}
	points := make([]usage.CostPoint, 10)
	now := time.Now().UTC()
	for i := range points {
		points[i] = usage.CostPoint{
			Timestamp: now.AddDate(0, 0, i-10),
			Amount:    50 + 10*float64(i),
			Currency:  "USD",
		}
	}
	store.SetSeries(scope, &usage.Series{Scope: scope, Points: points})

	_, alerts, err := tracker.Recompute(ctx, "b1", 500)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	var forecastAlert *budget.BudgetAlert
	for _, a := range alerts {
		if a.Type == budget.AlertForecastExceeded {
			forecastAlert = a
		}
	}
	if forecastAlert == nil {
		t.Fatal("Expected a forecast_exceeded alert")
	}
	if forecastAlert.Severity != budget.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", forecastAlert.Severity)
	}

	// a second recomputation with the forecast alert still open must not
	// persist a duplicate
	_, _, err = tracker.Recompute(ctx, "b1", 510)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	open, err := repo.ListAlerts(ctx, "b1", budget.AlertStatusActive)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	count := 0
	for _, a := range open {
		if a.Type == budget.AlertForecastExceeded {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 open forecast alert, got %d", count)
	}
}

func TestRecomputeFromStore(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	store := testutil.NewMockUsageStore()
	tracker := newTestTracker(repo, store)
	ctx := context.Background()

	b := monthlyBudget("b1", 10000, 80)
	seedBudget(t, repo, b)

	scope := usage.Scope{TeamID: "team-eng"}
	points := make([]usage.CostPoint, 5)
	now := time.Now().UTC()
	for i := range points {
		points[i] = usage.CostPoint{
			Timestamp: now.AddDate(0, 0, i-5),
			Amount:    100,
			Currency:  "USD",
		}
	}
	store.SetSeries(scope, &usage.Series{Scope: scope, Points: points})

	updated, _, err := tracker.RecomputeFromStore(ctx, "b1")
	if err != nil {
		t.Fatalf("RecomputeFromStore failed: %v", err)
	}
	if updated.CurrentSpend != 500 {
		t.Errorf("Expected spend 500 from the store, got %f", updated.CurrentSpend)
	}
	if updated.Utilization != 5.0 {
		t.Errorf("Expected utilization 5.0, got %f", updated.Utilization)
	}
}

func TestAlertStatusLifecycle(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	tracker := newTestTracker(repo, testutil.NewMockUsageStore())
	ctx := context.Background()

	seedBudget(t, repo, monthlyBudget("b1", 1000, 80))
	_, alerts, err := tracker.Recompute(ctx, "b1", 850)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	alertID := alerts[0].ID

	a, err := tracker.UpdateAlertStatus(ctx, alertID, budget.AlertStatusAcknowledged)
	if err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	if a.Status != budget.AlertStatusAcknowledged {
		t.Errorf("Expected acknowledged, got %s", a.Status)
	}

	a, err = tracker.UpdateAlertStatus(ctx, alertID, budget.AlertStatusResolved)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if a.Status != budget.AlertStatusResolved {
		t.Errorf("Expected resolved, got %s", a.Status)
	}

	// reverse transition is rejected
	_, err = tracker.UpdateAlertStatus(ctx, alertID, budget.AlertStatusActive)
	if !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("Expected CONFLICT on reverse transition, got %v", err)
	}
}
