package services

import (
	"fmt"
	"sort"

	"github.com/pratik-mahalle/costpilot/internal/domain/scenario"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
)

// quickWinMaxComplexity bounds the implementation complexity a scenario
// may have and still count as a quick win
const quickWinMaxComplexity = 3

// riskLevelValue maps a qualitative risk level onto [0,1] for scoring
var riskLevelValue = map[string]float64{
	scenario.RiskLow:    0.2,
	scenario.RiskMedium: 0.5,
	scenario.RiskHigh:   0.8,
}

// ScenarioComparator ranks completed scenarios under a weighting policy.
// Comparison is a pure function of its inputs; identical inputs always
// produce the identical ranking.
type ScenarioComparator struct {
	weights map[scenario.AnalysisMethod]scenario.Weights
	logger  *logger.Logger
}

// NewScenarioComparator creates a comparator with the given weight table.
// A nil table uses the built-in defaults.
func NewScenarioComparator(weights map[scenario.AnalysisMethod]scenario.Weights, log *logger.Logger) *ScenarioComparator {
	if weights == nil {
		weights = scenario.DefaultWeights
	}
	return &ScenarioComparator{
		weights: weights,
		logger:  log,
	}
}

// Compare ranks 2 to 10 completed scenarios under the given analysis
// method. Lower composite score ranks better; ties break toward lower risk,
// then lower complexity.
func (c *ScenarioComparator) Compare(scenarios []*scenario.Scenario, method scenario.AnalysisMethod) (*scenario.Comparison, error) {
	if len(scenarios) < scenario.MinCompared || len(scenarios) > scenario.MaxCompared {
		return nil, errors.IncomparableScenarios(
			fmt.Sprintf("comparison requires %d to %d scenarios, got %d",
				scenario.MinCompared, scenario.MaxCompared, len(scenarios)))
	}
	for _, s := range scenarios {
		if s.State != scenario.StateCompleted {
			return nil, errors.IncomparableScenarios(
				fmt.Sprintf("scenario %s is %s, only completed scenarios can be compared", s.ID, s.State))
		}
	}

	w, ok := c.weights[method]
	if !ok {
		return nil, errors.InvalidParameter("analysis_method",
			"cost_optimization|risk_adjusted|balanced|quick_wins", string(method))
	}

	summaries := make([]scenario.Summary, len(scenarios))
	costs := make([]float64, len(scenarios))
	risks := make([]float64, len(scenarios))
	complexities := make([]float64, len(scenarios))
	times := make([]float64, len(scenarios))

	for i, s := range scenarios {
		costs[i] = s.Impact.TotalDifference
		risks[i] = riskScore(s)
		complexities[i] = float64(s.Type.Complexity())
		times[i] = float64(s.Type.TimeToImplementDays())

		summaries[i] = scenario.Summary{
			ScenarioID:    s.ID,
			Type:          s.Type,
			CostChange:    s.Impact.TotalDifference,
			PercentChange: s.Impact.PercentChange,
			RiskScore:     risks[i],
			Complexity:    s.Type.Complexity(),
			TimeDays:      s.Type.TimeToImplementDays(),
		}
	}

	normCost := normalize(costs)
	normRisk := normalize(risks)
	normComplexity := normalize(complexities)
	normTime := normalize(times)

	var totalSavings float64
	for i, s := range scenarios {
		summaries[i].CompositeScore = w.Cost*normCost[i] +
			w.Risk*normRisk[i] +
			w.Complexity*normComplexity[i] +
			w.Time*normTime[i]
		summaries[i].QuickWin = s.Savings() > 0 &&
			s.Risk.Level == scenario.RiskLow &&
			s.Type.Complexity() <= quickWinMaxComplexity
		totalSavings += s.Savings()
	}

	order := make([]int, len(summaries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return summaryLess(summaries[order[a]], summaries[order[b]])
	})

	ids := make([]string, len(scenarios))
	for i, s := range scenarios {
		ids[i] = s.ID
	}

	cmp := &scenario.Comparison{
		ScenarioIDs:           ids,
		Summaries:             summaries,
		BestScenarioID:        summaries[order[0]].ScenarioID,
		WorstScenarioID:       summaries[order[len(order)-1]].ScenarioID,
		TotalPotentialSavings: totalSavings,
		Method:                method,
		Weights:               w,
	}

	c.logger.WithFields(map[string]interface{}{
		"scenarios":     len(scenarios),
		"method":        method,
		"best":          cmp.BestScenarioID,
		"total_savings": totalSavings,
	}).Debug("Scenarios compared")

	return cmp, nil
}

// summaryLess orders by composite score, then risk, then complexity
func summaryLess(a, b scenario.Summary) bool {
	if a.CompositeScore != b.CompositeScore {
		return a.CompositeScore < b.CompositeScore
	}
	if a.RiskScore != b.RiskScore {
		return a.RiskScore < b.RiskScore
	}
	return a.Complexity < b.Complexity
}

// riskScore blends the run's qualitative level with its confidence
func riskScore(s *scenario.Scenario) float64 {
	level, ok := riskLevelValue[s.Risk.Level]
	if !ok {
		level = 0.5
	}
	return 0.7*level + 0.3*(1-s.Risk.ConfidenceScore)
}

// normalize rescales values to [0,1] with lower better preserved. Equal
// values map to 0.5 so the metric contributes nothing to the ranking.
func normalize(values []float64) []float64 {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(values))
	if max == min {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}
