package services

import (
	"context"
	"math"
	"testing"

	"github.com/pratik-mahalle/costpilot/internal/domain/scenario"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/testutil"
)

func newTestComparator() *ScenarioComparator {
	return NewScenarioComparator(nil, testutil.NewLogger())
}

// runScenario executes one scenario against a 1000-total baseline
func runScenario(t *testing.T, engine *ScenarioEngine, params scenario.Parameters) *scenario.Scenario {
	t.Helper()
	baseline := testutil.ConstantSeries(usage.Scope{Region: "us-east-1"}, 100, 10)
	s, err := engine.Run(context.Background(), baseline, params, RunOptions{})
	if err != nil {
		t.Fatalf("Scenario run failed: %v", err)
	}
	return s
}

func TestCompareRanking(t *testing.T) {
	engine := newTestScenarioEngine()
	comparator := newTestComparator()

	// cost changes of -500, -200 and +100 against the same baseline
	bigCut := runScenario(t, engine, scenario.RightsizingParams{ReductionFactor: 0.5})
	smallCut := runScenario(t, engine, scenario.RightsizingParams{ReductionFactor: 0.2})
	increase := runScenario(t, engine, scenario.MigrationParams{
		FromRegion: "us-east-1", ToRegion: "eu-central-1", CostFactor: 1.1,
	})

	cmp, err := comparator.Compare([]*scenario.Scenario{smallCut, increase, bigCut}, scenario.MethodCostOptimization)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if cmp.BestScenarioID != bigCut.ID {
		t.Errorf("Expected the deepest cut to rank best, got %s", cmp.BestScenarioID)
	}
	if cmp.WorstScenarioID != increase.ID {
		t.Errorf("Expected the cost increase to rank worst, got %s", cmp.WorstScenarioID)
	}
	if math.Abs(cmp.TotalPotentialSavings-700) > 1e-9 {
		t.Errorf("Expected total savings 700, got %f", cmp.TotalPotentialSavings)
	}
	if len(cmp.Summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(cmp.Summaries))
	}
}

func TestComparePreconditions(t *testing.T) {
	engine := newTestScenarioEngine()
	comparator := newTestComparator()
	s1 := runScenario(t, engine, scenario.RightsizingParams{ReductionFactor: 0.1})
	s2 := runScenario(t, engine, scenario.RightsizingParams{ReductionFactor: 0.2})

	t.Run("too few scenarios", func(t *testing.T) {
		_, err := comparator.Compare([]*scenario.Scenario{s1}, scenario.MethodBalanced)
		if !errors.IsCode(err, errors.ErrCodeIncomparable) {
			t.Errorf("Expected INCOMPARABLE_SCENARIO, got %v", err)
		}
	})

	t.Run("too many scenarios", func(t *testing.T) {
		many := make([]*scenario.Scenario, 11)
		for i := range many {
			many[i] = s1
		}
		_, err := comparator.Compare(many, scenario.MethodBalanced)
		if !errors.IsCode(err, errors.ErrCodeIncomparable) {
			t.Errorf("Expected INCOMPARABLE_SCENARIO, got %v", err)
		}
	})

	t.Run("non-completed scenario", func(t *testing.T) {
		pending := &scenario.Scenario{ID: "p1", State: scenario.StateCreated, Type: scenario.TypeRightsizing}
		_, err := comparator.Compare([]*scenario.Scenario{s1, pending}, scenario.MethodBalanced)
		if !errors.IsCode(err, errors.ErrCodeIncomparable) {
			t.Errorf("Expected INCOMPARABLE_SCENARIO, got %v", err)
		}
	})

	t.Run("unknown analysis method", func(t *testing.T) {
		_, err := comparator.Compare([]*scenario.Scenario{s1, s2}, scenario.AnalysisMethod("alchemy"))
		if !errors.IsCode(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("Expected INVALID_PARAMETER, got %v", err)
		}
	})
}

func TestCompareQuickWins(t *testing.T) {
	engine := newTestScenarioEngine()
	comparator := newTestComparator()

	// low risk saving with complexity 1
	reservation := runScenario(t, engine, scenario.ReservationParams{CoverageFraction: 0.3, DiscountRate: 0.3})
	// high complexity migration saving
	migration := runScenario(t, engine, scenario.MigrationParams{
		FromRegion: "us-east-1", ToRegion: "us-west-2", CostFactor: 0.7,
	})

	cmp, err := comparator.Compare([]*scenario.Scenario{reservation, migration}, scenario.MethodQuickWins)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	byID := map[string]scenario.Summary{}
	for _, s := range cmp.Summaries {
		byID[s.ScenarioID] = s
	}

	if !byID[reservation.ID].QuickWin {
		t.Error("Expected the low-risk reservation to be a quick win")
	}
	if byID[migration.ID].QuickWin {
		t.Error("A complexity-5 migration must not be a quick win")
	}
}

func TestCompareTieBreaking(t *testing.T) {
	comparator := newTestComparator()

	// identical impact, differing risk: every normalized metric except risk
	// is equal, so the lower-risk scenario must win under any weighting
	low := &scenario.Scenario{
		ID: "s-low", Type: scenario.TypeReservation, State: scenario.StateCompleted,
		Impact: scenario.Impact{TotalDifference: -100, PercentChange: -10},
		Risk:   scenario.RiskAssessment{Level: scenario.RiskLow, ConfidenceScore: 0.8},
	}
	high := &scenario.Scenario{
		ID: "s-high", Type: scenario.TypeReservation, State: scenario.StateCompleted,
		Impact: scenario.Impact{TotalDifference: -100, PercentChange: -10},
		Risk:   scenario.RiskAssessment{Level: scenario.RiskHigh, ConfidenceScore: 0.8},
	}

	cmp, err := comparator.Compare([]*scenario.Scenario{high, low}, scenario.MethodBalanced)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if cmp.BestScenarioID != "s-low" {
		t.Errorf("Expected the lower-risk scenario to win, got %s", cmp.BestScenarioID)
	}
}

func TestCompareEqualMetricsNeutral(t *testing.T) {
	comparator := newTestComparator()

	// fully identical scenarios normalize every metric to 0.5
	a := &scenario.Scenario{
		ID: "s-a", Type: scenario.TypeSpot, State: scenario.StateCompleted,
		Impact: scenario.Impact{TotalDifference: -150, PercentChange: -15},
		Risk:   scenario.RiskAssessment{Level: scenario.RiskMedium, ConfidenceScore: 0.5},
	}
	b := &scenario.Scenario{
		ID: "s-b", Type: scenario.TypeSpot, State: scenario.StateCompleted,
		Impact: scenario.Impact{TotalDifference: -150, PercentChange: -15},
		Risk:   scenario.RiskAssessment{Level: scenario.RiskMedium, ConfidenceScore: 0.5},
	}

	cmp, err := comparator.Compare([]*scenario.Scenario{a, b}, scenario.MethodBalanced)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	for _, s := range cmp.Summaries {
		if math.Abs(s.CompositeScore-0.5) > 1e-9 {
			t.Errorf("Expected neutral composite 0.5, got %f", s.CompositeScore)
		}
	}
}

func TestCompareDeterminism(t *testing.T) {
	engine := newTestScenarioEngine()
	comparator := newTestComparator()

	scenarios := []*scenario.Scenario{
		runScenario(t, engine, scenario.RightsizingParams{ReductionFactor: 0.3}),
		runScenario(t, engine, scenario.SpotParams{SpotFraction: 0.4, DiscountRate: 0.5}),
		runScenario(t, engine, scenario.ReservationParams{CoverageFraction: 0.6, DiscountRate: 0.2}),
	}

	first, err := comparator.Compare(scenarios, scenario.MethodRiskAdjusted)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	second, err := comparator.Compare(scenarios, scenario.MethodRiskAdjusted)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if first.BestScenarioID != second.BestScenarioID ||
		first.WorstScenarioID != second.WorstScenarioID {
		t.Error("Identical inputs produced different rankings")
	}
	for i := range first.Summaries {
		if first.Summaries[i].CompositeScore != second.Summaries[i].CompositeScore {
			t.Errorf("Summary %d composite differs between runs", i)
		}
	}
}

func TestCompareCustomWeights(t *testing.T) {
	engine := newTestScenarioEngine()

	weights := map[scenario.AnalysisMethod]scenario.Weights{
		scenario.MethodCostOptimization: {Cost: 1, Risk: 0, Complexity: 0, Time: 0},
	}
	comparator := NewScenarioComparator(weights, testutil.NewLogger())

	cheap := runScenario(t, engine, scenario.RightsizingParams{ReductionFactor: 0.6})
	pricey := runScenario(t, engine, scenario.MigrationParams{
		FromRegion: "us-east-1", ToRegion: "us-west-2", CostFactor: 0.9,
	})

	cmp, err := comparator.Compare([]*scenario.Scenario{pricey, cheap}, scenario.MethodCostOptimization)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	// pure cost weighting ignores the migration's high risk
	if cmp.BestScenarioID != cheap.ID {
		t.Errorf("Expected the larger saving to win on pure cost, got %s", cmp.BestScenarioID)
	}
}
