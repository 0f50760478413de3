package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalysisMethod names a weighting policy for scenario comparison
type AnalysisMethod string

const (
	MethodCostOptimization AnalysisMethod = "cost_optimization"
	MethodRiskAdjusted     AnalysisMethod = "risk_adjusted"
	MethodBalanced         AnalysisMethod = "balanced"
	MethodQuickWins        AnalysisMethod = "quick_wins"
)

// Weights combines normalized comparison metrics into a composite score.
// Lower composite score means more favorable. Weights sum to 1.
type Weights struct {
	Cost       float64 `yaml:"cost" json:"cost"`
	Risk       float64 `yaml:"risk" json:"risk"`
	Complexity float64 `yaml:"complexity" json:"complexity"`
	Time       float64 `yaml:"time" json:"time"`
}

// DefaultWeights is the built-in weight table per analysis method
var DefaultWeights = map[AnalysisMethod]Weights{
	MethodCostOptimization: {Cost: 0.6, Risk: 0.1, Complexity: 0.1, Time: 0.2},
	MethodRiskAdjusted:     {Cost: 0.3, Risk: 0.5, Complexity: 0.1, Time: 0.1},
	MethodBalanced:         {Cost: 0.25, Risk: 0.25, Complexity: 0.25, Time: 0.25},
	MethodQuickWins:        {Cost: 0.3, Risk: 0.2, Complexity: 0.3, Time: 0.2},
}

// LoadWeights reads a weight table override from a YAML file keyed by
// analysis method, merging over the defaults
func LoadWeights(path string) (map[AnalysisMethod]Weights, error) {
	merged := make(map[AnalysisMethod]Weights, len(DefaultWeights))
	for k, v := range DefaultWeights {
		merged[k] = v
	}
	if path == "" {
		return merged, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}

	var overrides map[AnalysisMethod]Weights
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse weights file: %w", err)
	}

	for k, v := range overrides {
		sum := v.Cost + v.Risk + v.Complexity + v.Time
		if sum <= 0 {
			return nil, fmt.Errorf("weights for %s must sum to a positive value", k)
		}
		merged[k] = Weights{
			Cost:       v.Cost / sum,
			Risk:       v.Risk / sum,
			Complexity: v.Complexity / sum,
			Time:       v.Time / sum,
		}
	}
	return merged, nil
}

// Summary is the per-scenario slice of a comparison
type Summary struct {
	ScenarioID     string  `json:"scenario_id"`
	Type           Type    `json:"type"`
	CostChange     float64 `json:"cost_change"`
	PercentChange  float64 `json:"percent_change"`
	RiskScore      float64 `json:"risk_score"` // [0,1]
	Complexity     int     `json:"complexity"`
	TimeDays       int     `json:"time_to_implement_days"`
	CompositeScore float64 `json:"composite_score"`
	QuickWin       bool    `json:"quick_win"`
}

// Comparison ranks multiple completed scenarios under one weighting policy.
// It is derived on demand and never persisted as a source of truth.
type Comparison struct {
	ScenarioIDs           []string       `json:"scenario_ids"`
	Summaries             []Summary      `json:"summaries"`
	BestScenarioID        string         `json:"best_scenario_id"`
	WorstScenarioID       string         `json:"worst_scenario_id"`
	TotalPotentialSavings float64        `json:"total_potential_savings"`
	Method                AnalysisMethod `json:"analysis_method"`
	Weights               Weights        `json:"weights"`
}

// Comparison size bounds
const (
	MinCompared = 2
	MaxCompared = 10
)
