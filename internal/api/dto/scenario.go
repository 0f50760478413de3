package dto

import (
	"encoding/json"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/scenario"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
)

// RunScenarioRequest executes a what-if scenario against a usage window
type RunScenarioRequest struct {
	Scope       ScopeDTO        `json:"scope"`
	Start       string          `json:"start" validate:"required"`
	End         string          `json:"end" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=rightsizing migration reservation spot growth_adjustment"`
	Parameters  json.RawMessage `json:"parameters" validate:"required"`
	HorizonDays int             `json:"horizon_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	Async       bool            `json:"async,omitempty"`
}

// DecodeParameters unmarshals the raw parameter payload into the typed
// set selected by the scenario type
func (r *RunScenarioRequest) DecodeParameters() (scenario.Parameters, error) {
	switch scenario.Type(r.Type) {
	case scenario.TypeRightsizing:
		var p scenario.RightsizingParams
		if err := json.Unmarshal(r.Parameters, &p); err != nil {
			return nil, errors.InvalidScenario("parameters", "rightsizing parameter object", err.Error())
		}
		return p, nil
	case scenario.TypeMigration:
		var p scenario.MigrationParams
		if err := json.Unmarshal(r.Parameters, &p); err != nil {
			return nil, errors.InvalidScenario("parameters", "migration parameter object", err.Error())
		}
		return p, nil
	case scenario.TypeReservation:
		var p scenario.ReservationParams
		if err := json.Unmarshal(r.Parameters, &p); err != nil {
			return nil, errors.InvalidScenario("parameters", "reservation parameter object", err.Error())
		}
		return p, nil
	case scenario.TypeSpot:
		var p scenario.SpotParams
		if err := json.Unmarshal(r.Parameters, &p); err != nil {
			return nil, errors.InvalidScenario("parameters", "spot parameter object", err.Error())
		}
		return p, nil
	case scenario.TypeGrowthAdjustment:
		var p scenario.GrowthAdjustmentParams
		if err := json.Unmarshal(r.Parameters, &p); err != nil {
			return nil, errors.InvalidScenario("parameters", "growth adjustment parameter object", err.Error())
		}
		return p, nil
	default:
		return nil, errors.InvalidScenario("type", "known scenario type", r.Type)
	}
}

// ScenarioDTO represents a scenario run in API responses
type ScenarioDTO struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	State           string     `json:"state"`
	BaselineTotal   float64    `json:"baseline_total,omitempty"`
	ProjectedTotal  float64    `json:"projected_total,omitempty"`
	TotalDifference float64    `json:"total_difference"`
	PercentChange   float64    `json:"percent_change"`
	RiskLevel       string     `json:"risk_level,omitempty"`
	ConfidenceScore float64    `json:"confidence_score,omitempty"`
	Error           string     `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewScenarioDTO maps a scenario into its API shape
func NewScenarioDTO(s *scenario.Scenario) ScenarioDTO {
	d := ScenarioDTO{
		ID:              s.ID,
		Type:            string(s.Type),
		State:           string(s.State),
		TotalDifference: s.Impact.TotalDifference,
		PercentChange:   s.Impact.PercentChange,
		RiskLevel:       s.Risk.Level,
		ConfidenceScore: s.Risk.ConfidenceScore,
		Error:           s.Error,
		CreatedAt:       s.CreatedAt,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
	}
	if s.Baseline != nil {
		d.BaselineTotal = s.Baseline.Total()
	}
	if s.Projected != nil {
		d.ProjectedTotal = s.Projected.Total()
	}
	return d
}

// CompareScenariosRequest ranks completed scenarios
type CompareScenariosRequest struct {
	ScenarioIDs    []string `json:"scenario_ids" validate:"required,min=2,max=10"`
	AnalysisMethod string   `json:"analysis_method,omitempty" validate:"omitempty,oneof=cost_optimization risk_adjusted balanced quick_wins"`
}

// ScenarioSummaryDTO is one ranked entry of a comparison
type ScenarioSummaryDTO struct {
	ScenarioID     string  `json:"scenario_id"`
	Type           string  `json:"type"`
	CostChange     float64 `json:"cost_change"`
	PercentChange  float64 `json:"percent_change"`
	RiskScore      float64 `json:"risk_score"`
	Complexity     int     `json:"complexity"`
	TimeDays       int     `json:"time_to_implement_days"`
	CompositeScore float64 `json:"composite_score"`
	QuickWin       bool    `json:"quick_win"`
}

// ComparisonResponse carries a scenario comparison result
type ComparisonResponse struct {
	ScenarioIDs           []string             `json:"scenario_ids"`
	Summaries             []ScenarioSummaryDTO `json:"summaries"`
	BestScenarioID        string               `json:"best_scenario_id"`
	WorstScenarioID       string               `json:"worst_scenario_id"`
	TotalPotentialSavings float64              `json:"total_potential_savings"`
	Method                string               `json:"analysis_method"`
}

// NewComparisonResponse maps a comparison into its API shape
func NewComparisonResponse(c *scenario.Comparison) ComparisonResponse {
	summaries := make([]ScenarioSummaryDTO, len(c.Summaries))
	for i, s := range c.Summaries {
		summaries[i] = ScenarioSummaryDTO{
			ScenarioID:     s.ScenarioID,
			Type:           string(s.Type),
			CostChange:     s.CostChange,
			PercentChange:  s.PercentChange,
			RiskScore:      s.RiskScore,
			Complexity:     s.Complexity,
			TimeDays:       s.TimeDays,
			CompositeScore: s.CompositeScore,
			QuickWin:       s.QuickWin,
		}
	}
	return ComparisonResponse{
		ScenarioIDs:           c.ScenarioIDs,
		Summaries:             summaries,
		BestScenarioID:        c.BestScenarioID,
		WorstScenarioID:       c.WorstScenarioID,
		TotalPotentialSavings: c.TotalPotentialSavings,
		Method:                string(c.Method),
	}
}
