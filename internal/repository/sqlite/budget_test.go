package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/budget"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	return db
}

func testBudget(id string) *budget.Budget {
	return &budget.Budget{
		ID:             id,
		Name:           "platform-monthly",
		Amount:         5000,
		Period:         budget.PeriodMonthly,
		Scope:          budget.ScopeTeam,
		Target:         "team-platform",
		AlertThreshold: 80,
		Status:         budget.StatusActive,
		PeriodStart:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	repo := NewBudgetRepository(newTestDB(t))
	ctx := context.Background()

	b := testBudget("b-1")
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("CreateBudget failed: %v", err)
	}

	got, err := repo.GetBudget(ctx, "b-1")
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if got.Name != b.Name || got.Amount != b.Amount || got.Period != b.Period ||
		got.Scope != b.Scope || got.Target != b.Target || got.AlertThreshold != b.AlertThreshold {
		t.Errorf("Round trip mismatch: %+v", got)
	}
	if !got.PeriodStart.Equal(b.PeriodStart) {
		t.Errorf("Expected period start %v, got %v", b.PeriodStart, got.PeriodStart)
	}

	got.CurrentSpend = 4200
	got.Utilization = 84
	got.Status = budget.StatusActive
	got.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateBudget(ctx, got); err != nil {
		t.Fatalf("UpdateBudget failed: %v", err)
	}

	updated, err := repo.GetBudget(ctx, "b-1")
	if err != nil {
		t.Fatalf("GetBudget after update failed: %v", err)
	}
	if updated.CurrentSpend != 4200 || updated.Utilization != 84 {
		t.Errorf("Expected updated spend/utilization, got %+v", updated)
	}
}

func TestBudgetNotFound(t *testing.T) {
	repo := NewBudgetRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.GetBudget(ctx, "missing"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
	if err := repo.UpdateBudget(ctx, testBudget("missing")); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Expected NOT_FOUND on update, got %v", err)
	}
}

func TestBudgetListFilters(t *testing.T) {
	repo := NewBudgetRepository(newTestDB(t))
	ctx := context.Background()

	b1 := testBudget("b-1")
	b2 := testBudget("b-2")
	b2.Scope = budget.ScopeService
	b2.Target = "checkout"
	b3 := testBudget("b-3")
	b3.Status = budget.StatusExceeded

	for _, b := range []*budget.Budget{b1, b2, b3} {
		if err := repo.CreateBudget(ctx, b); err != nil {
			t.Fatalf("CreateBudget failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter budget.Filter
		want   int
	}{
		{name: "all", filter: budget.Filter{}, want: 3},
		{name: "by scope", filter: budget.Filter{Scope: budget.ScopeService}, want: 1},
		{name: "by target", filter: budget.Filter{Target: "team-platform"}, want: 2},
		{name: "by status", filter: budget.Filter{Status: budget.StatusExceeded}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListBudgets(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListBudgets failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Expected %d budgets, got %d", tt.want, len(got))
			}
		})
	}
}

func TestAlertRoundTrip(t *testing.T) {
	repo := NewBudgetRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.CreateBudget(ctx, testBudget("b-1")); err != nil {
		t.Fatalf("CreateBudget failed: %v", err)
	}

	a := &budget.BudgetAlert{
		ID:         "a-1",
		BudgetID:   "b-1",
		Type:       budget.AlertThresholdExceeded,
		Severity:   budget.SeverityLow,
		TriggerPct: 85,
		TriggerAmt: 4250,
		Message:    "Budget platform-monthly has crossed its alert threshold",
		Status:     budget.AlertStatusActive,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.CreateAlert(ctx, a); err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	got, err := repo.GetAlert(ctx, "a-1")
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if got.Type != a.Type || got.TriggerPct != 85 {
		t.Errorf("Round trip mismatch: %+v", got)
	}

	got.Status = budget.AlertStatusAcknowledged
	got.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateAlert(ctx, got); err != nil {
		t.Fatalf("UpdateAlert failed: %v", err)
	}

	active, err := repo.ListAlerts(ctx, "b-1", budget.AlertStatusActive)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected no active alerts after acknowledge, got %d", len(active))
	}
}

func TestUsageStoreRoundTrip(t *testing.T) {
	store := NewUsageStore(newTestDB(t))
	ctx := context.Background()
	scope := usage.Scope{TeamID: "team-1", ServiceName: "api", Provider: "aws"}

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	points := make([]usage.CostPoint, 10)
	for i := range points {
		points[i] = usage.CostPoint{
			Timestamp: start.AddDate(0, 0, i),
			Amount:    100 + float64(i),
			Currency:  "USD",
		}
	}
	if err := store.InsertPoints(ctx, scope, points); err != nil {
		t.Fatalf("InsertPoints failed: %v", err)
	}

	t.Run("ordered window read", func(t *testing.T) {
		series, err := store.FetchUsage(ctx, scope, start, start.AddDate(0, 0, 5))
		if err != nil {
			t.Fatalf("FetchUsage failed: %v", err)
		}
		if series.Len() != 5 {
			t.Fatalf("Expected 5 points in window, got %d", series.Len())
		}
		if err := series.Validate(); err != nil {
			t.Errorf("Fetched series not strictly increasing: %v", err)
		}
		if series.Points[0].Amount != 100 {
			t.Errorf("Expected first amount 100, got %f", series.Points[0].Amount)
		}
	})

	t.Run("scope isolation", func(t *testing.T) {
		other, err := store.FetchUsage(ctx, usage.Scope{TeamID: "team-2"}, start, start.AddDate(0, 1, 0))
		if err != nil {
			t.Fatalf("FetchUsage failed: %v", err)
		}
		if other.Len() != 0 {
			t.Errorf("Expected no points for another team, got %d", other.Len())
		}
	})

	t.Run("replace on duplicate timestamp", func(t *testing.T) {
		if err := store.InsertPoints(ctx, scope, []usage.CostPoint{
			{Timestamp: start, Amount: 999, Currency: "USD"},
		}); err != nil {
			t.Fatalf("InsertPoints failed: %v", err)
		}
		series, err := store.FetchUsage(ctx, scope, start, start.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("FetchUsage failed: %v", err)
		}
		if series.Len() != 1 || series.Points[0].Amount != 999 {
			t.Errorf("Expected replacement to 999, got %+v", series.Points)
		}
	})
}

func TestResourceUsageRoundTrip(t *testing.T) {
	store := NewUsageStore(newTestDB(t))
	ctx := context.Background()

	windowStart := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 30)

	resources := []usage.ResourceUsage{
		{ResourceID: "i-1", ResourceType: "ec2-instance", Category: usage.CategoryCompute,
			TeamID: "team-1", UsageHours: 700, AvgUtilization: 8, UnitCost: 0.5},
		{ResourceID: "emr-1", ResourceType: "emr-cluster", Category: usage.CategoryAnalytics,
			TeamID: "team-2", UsageHours: 200, AvgUtilization: 70, UnitCost: 2, Reserved: true},
	}
	if err := store.InsertResourceUsage(ctx, windowStart, windowEnd, resources); err != nil {
		t.Fatalf("InsertResourceUsage failed: %v", err)
	}

	got, err := store.FetchResourceUsage(ctx, usage.Scope{TeamID: "team-1"}, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("FetchResourceUsage failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 resource for team-1, got %d", len(got))
	}
	r := got[0]
	if r.ResourceID != "i-1" || r.UsageHours != 700 || r.AvgUtilization != 8 || r.Reserved {
		t.Errorf("Round trip mismatch: %+v", r)
	}
}
