package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/scenario"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/testutil"
)

func newTestScenarioEngine() *ScenarioEngine {
	log := testutil.NewLogger()
	return NewScenarioEngine(NewForecaster(7, log), NewTrendAnalyzer(0.05, 7, 2.0, log), log)
}

func TestScenarioRunRightsizing(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.ConstantSeries(usage.Scope{TeamID: "team-1"}, 100, 10)

	s, err := engine.Run(context.Background(), baseline,
		scenario.RightsizingParams{ReductionFactor: 0.2}, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if s.State != scenario.StateCompleted {
		t.Fatalf("Expected completed state, got %s", s.State)
	}
	if s.StartedAt == nil || s.CompletedAt == nil {
		t.Error("Expected started and completed timestamps")
	}

	// 20% off a 1000 baseline
	if math.Abs(s.Projected.Total()-800) > 1e-9 {
		t.Errorf("Expected projected total 800, got %f", s.Projected.Total())
	}
	if math.Abs(s.Impact.TotalDifference-(-200)) > 1e-9 {
		t.Errorf("Expected difference -200, got %f", s.Impact.TotalDifference)
	}
	if math.Abs(s.Impact.PercentChange-(-20)) > 1e-9 {
		t.Errorf("Expected -20%% change, got %f", s.Impact.PercentChange)
	}
	if s.Savings() != 200 {
		t.Errorf("Expected savings 200, got %f", s.Savings())
	}
}

func TestScenarioTransforms(t *testing.T) {
	engine := newTestScenarioEngine()
	ctx := context.Background()

	tests := []struct {
		name      string
		params    scenario.Parameters
		wantTotal float64
	}{
		{
			name:      "migration at cheaper region",
			params:    scenario.MigrationParams{FromRegion: "us-east-1", ToRegion: "us-west-2", CostFactor: 0.8},
			wantTotal: 800,
		},
		{
			name:      "migration at pricier region",
			params:    scenario.MigrationParams{FromRegion: "us-east-1", ToRegion: "eu-central-1", CostFactor: 1.2},
			wantTotal: 1200,
		},
		{
			name:      "reservation half coverage at 40% discount",
			params:    scenario.ReservationParams{CoverageFraction: 0.5, DiscountRate: 0.4},
			wantTotal: 800,
		},
		{
			name:      "spot quarter of spend at 60% discount",
			params:    scenario.SpotParams{SpotFraction: 0.25, DiscountRate: 0.6},
			wantTotal: 850,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseline := testutil.ConstantSeries(usage.Scope{Region: "us-east-1"}, 100, 10)
			s, err := engine.Run(ctx, baseline, tt.params, RunOptions{})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if math.Abs(s.Projected.Total()-tt.wantTotal) > 1e-9 {
				t.Errorf("Expected projected total %f, got %f", tt.wantTotal, s.Projected.Total())
			}
		})
	}
}

func TestScenarioGrowthCompounds(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.ConstantSeries(usage.Scope{}, 100, 3)

	s, err := engine.Run(context.Background(), baseline,
		scenario.GrowthAdjustmentParams{GrowthDelta: 0.1}, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 100*1.1^0 + 100*1.1^1 + 100*1.1^2
	want := 100 + 110 + 121.0
	if math.Abs(s.Projected.Total()-want) > 1e-9 {
		t.Errorf("Expected compounded total %f, got %f", want, s.Projected.Total())
	}
}

func TestScenarioMigrationSwapsRegion(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.ConstantSeries(usage.Scope{Region: "us-east-1"}, 100, 5)

	s, err := engine.Run(context.Background(), baseline,
		scenario.MigrationParams{FromRegion: "us-east-1", ToRegion: "us-west-2", CostFactor: 0.9},
		RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s.Projected.Scope.Region != "us-west-2" {
		t.Errorf("Expected projected scope in us-west-2, got %s", s.Projected.Scope.Region)
	}
	if s.Baseline.Scope.Region != "us-east-1" {
		t.Errorf("Baseline scope must be untouched, got %s", s.Baseline.Scope.Region)
	}
}

func TestScenarioValidation(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.ConstantSeries(usage.Scope{}, 100, 5)
	ctx := context.Background()

	tests := []struct {
		name     string
		baseline *usage.Series
		params   scenario.Parameters
		wantCode string
	}{
		{
			name:     "nil params",
			baseline: baseline,
			params:   nil,
			wantCode: errors.ErrCodeInvalidScenario,
		},
		{
			name:     "reduction factor above 1",
			baseline: baseline,
			params:   scenario.RightsizingParams{ReductionFactor: 1.5},
			wantCode: errors.ErrCodeInvalidScenario,
		},
		{
			name:     "migration without target region",
			baseline: baseline,
			params:   scenario.MigrationParams{FromRegion: "us-east-1", CostFactor: 1},
			wantCode: errors.ErrCodeInvalidScenario,
		},
		{
			name:     "cost factor above 2",
			baseline: baseline,
			params:   scenario.MigrationParams{FromRegion: "a", ToRegion: "b", CostFactor: 2.5},
			wantCode: errors.ErrCodeInvalidScenario,
		},
		{
			name:     "growth delta below -1",
			baseline: baseline,
			params:   scenario.GrowthAdjustmentParams{GrowthDelta: -1.5},
			wantCode: errors.ErrCodeInvalidScenario,
		},
		{
			name:     "empty baseline",
			baseline: testutil.DailySeries(usage.Scope{}),
			params:   scenario.RightsizingParams{ReductionFactor: 0.2},
			wantCode: errors.ErrCodeInsufficientData,
		},
		{
			name:     "nil baseline",
			baseline: nil,
			params:   scenario.RightsizingParams{ReductionFactor: 0.2},
			wantCode: errors.ErrCodeInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Run(ctx, tt.baseline, tt.params, RunOptions{})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.IsCode(err, tt.wantCode) {
				t.Errorf("Expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestScenarioHorizonExtension(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.LinearSeries(usage.Scope{}, 100, 10, 10)

	s, err := engine.Run(context.Background(), baseline,
		scenario.RightsizingParams{ReductionFactor: 0}, RunOptions{HorizonDays: 5})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if s.Projected.Len() != 15 {
		t.Fatalf("Expected 15 projected points, got %d", s.Projected.Len())
	}
	// the linear forecast continues the 100+10i line
	last := s.Projected.Points[14]
	if math.Abs(last.Amount-240) > 1e-6 {
		t.Errorf("Expected extended point at 240, got %f", last.Amount)
	}
}

func TestScenarioRiskGrading(t *testing.T) {
	engine := newTestScenarioEngine()
	ctx := context.Background()

	t.Run("small reservation change is low risk", func(t *testing.T) {
		baseline := testutil.ConstantSeries(usage.Scope{}, 100, 30)
		s, err := engine.Run(ctx, baseline,
			scenario.ReservationParams{CoverageFraction: 0.2, DiscountRate: 0.2}, RunOptions{})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if s.Risk.Level != scenario.RiskLow {
			t.Errorf("Expected low risk, got %s (confidence %f)", s.Risk.Level, s.Risk.ConfidenceScore)
		}
	})

	t.Run("large migration is higher risk", func(t *testing.T) {
		baseline := testutil.ConstantSeries(usage.Scope{Region: "us-east-1"}, 100, 30)
		s, err := engine.Run(ctx, baseline,
			scenario.MigrationParams{FromRegion: "us-east-1", ToRegion: "ap-south-1", CostFactor: 1.8},
			RunOptions{})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if s.Risk.Level == scenario.RiskLow {
			t.Error("Expected elevated risk for a large migration")
		}
	})

	t.Run("confidence bounded to unit interval", func(t *testing.T) {
		baseline := testutil.ConstantSeries(usage.Scope{}, 100, 200)
		s, err := engine.Run(ctx, baseline,
			scenario.RightsizingParams{ReductionFactor: 0.1}, RunOptions{})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if s.Risk.ConfidenceScore < 0 || s.Risk.ConfidenceScore > 1 {
			t.Errorf("Confidence out of range: %f", s.Risk.ConfidenceScore)
		}
	})
}

func TestScenarioRegistry(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.ConstantSeries(usage.Scope{}, 100, 10)
	ctx := context.Background()

	s, err := engine.Run(ctx, baseline, scenario.RightsizingParams{ReductionFactor: 0.2}, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	fetched, err := engine.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.State != scenario.StateCompleted {
		t.Errorf("Expected completed, got %s", fetched.State)
	}

	if _, err := engine.Get("no-such-id"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}

	if len(engine.List()) != 1 {
		t.Errorf("Expected 1 tracked scenario, got %d", len(engine.List()))
	}
}

func TestScenarioSubmitCompletes(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.ConstantSeries(usage.Scope{}, 100, 10)

	s, err := engine.Submit(context.Background(), baseline,
		scenario.RightsizingParams{ReductionFactor: 0.3}, RunOptions{})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := engine.Get(s.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.State == scenario.StateCompleted {
			if math.Abs(got.Impact.TotalDifference-(-300)) > 1e-9 {
				t.Errorf("Expected difference -300, got %f", got.Impact.TotalDifference)
			}
			return
		}
		if got.State == scenario.StateFailed {
			t.Fatalf("Scenario failed: %s", got.Error)
		}
		if time.Now().After(deadline) {
			t.Fatal("Scenario did not complete in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScenarioCancelNotRunning(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.ConstantSeries(usage.Scope{}, 100, 10)
	ctx := context.Background()

	s, err := engine.Run(ctx, baseline, scenario.RightsizingParams{ReductionFactor: 0.2}, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if err := engine.Cancel(s.ID); !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("Expected CONFLICT cancelling a finished run, got %v", err)
	}
	if err := engine.Cancel("no-such-id"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
}

func TestScenarioDeterminism(t *testing.T) {
	engine := newTestScenarioEngine()
	baseline := testutil.DailySeries(usage.Scope{}, 90, 120, 100, 140, 110, 160, 130)
	ctx := context.Background()
	params := scenario.SpotParams{SpotFraction: 0.5, DiscountRate: 0.6}

	first, err := engine.Run(ctx, baseline, params, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := engine.Run(ctx, baseline, params, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if first.ID == second.ID {
		t.Error("Each run must produce a new scenario")
	}
	if first.Impact.TotalDifference != second.Impact.TotalDifference ||
		first.Risk.Level != second.Risk.Level ||
		first.Risk.ConfidenceScore != second.Risk.ConfidenceScore {
		t.Error("Identical inputs produced different outcomes")
	}
}
