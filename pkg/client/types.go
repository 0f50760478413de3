package client

import (
	"encoding/json"
	"time"
)

// Scope selects the entity a request operates on. Empty fields match all.
type Scope struct {
	TeamID      string `json:"team_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	Region      string `json:"region,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// ForecastRequest asks for a cost projection over a history window
type ForecastRequest struct {
	Scope           Scope   `json:"scope"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	Method          string  `json:"method"` // linear, exponential, seasonal, growth
	HorizonDays     int     `json:"horizon_days"`
	ConfidenceLevel float64 `json:"confidence_level,omitempty"`
}

// ForecastPoint is one projected point with its confidence bounds
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower_bound"`
	Upper     float64   `json:"upper_bound"`
}

// Forecast is a generated cost projection
type Forecast struct {
	Method          string          `json:"method"`
	GeneratedAt     time.Time       `json:"generated_at"`
	ConfidenceLevel float64         `json:"confidence_level"`
	Points          []ForecastPoint `json:"points"`
	Total           float64         `json:"projected_total"`
}

// TrendRequest asks for a trend summary over a history window
type TrendRequest struct {
	Scope           Scope  `json:"scope"`
	Start           string `json:"start"`
	End             string `json:"end"`
	WindowSize      int    `json:"window_size,omitempty"`
	DetectAnomalies bool   `json:"detect_anomalies,omitempty"`
}

// Anomaly is one flagged observation
type Anomaly struct {
	Timestamp      time.Time `json:"timestamp"`
	Observed       float64   `json:"observed"`
	Expected       float64   `json:"expected"`
	DeviationScore float64   `json:"deviation_score"`
	Severity       string    `json:"severity"`
}

// Trend is a trend analysis result
type Trend struct {
	Period     string    `json:"period"`
	PointCount int       `json:"point_count"`
	Direction  string    `json:"direction"` // rising, falling, flat
	GrowthRate float64   `json:"growth_rate"`
	Volatility float64   `json:"volatility"`
	Anomalies  []Anomaly `json:"anomalies"`
}

// CreateBudgetRequest registers a new budget
type CreateBudgetRequest struct {
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Period         string  `json:"period"` // monthly, quarterly, yearly
	Scope          string  `json:"scope"`  // team, service, organization
	Target         string  `json:"target,omitempty"`
	AlertThreshold float64 `json:"alert_threshold,omitempty"`
	PeriodStart    string  `json:"period_start"`
}

// Budget is a spending limit with live utilization
type Budget struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	Period         string    `json:"period"`
	Scope          string    `json:"scope"`
	Target         string    `json:"target,omitempty"`
	AlertThreshold float64   `json:"alert_threshold"`
	CurrentSpend   float64   `json:"current_spend"`
	Utilization    float64   `json:"utilization_percentage"`
	Status         string    `json:"status"`
	PeriodStart    time.Time `json:"period_start"`
	DaysRemaining  int       `json:"days_remaining"`
	CreatedAt      time.Time `json:"created_at"`
}

// BudgetAlert is one raised budget alert
type BudgetAlert struct {
	ID         string    `json:"id"`
	BudgetID   string    `json:"budget_id"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	TriggerPct float64   `json:"trigger_percentage"`
	TriggerAmt float64   `json:"trigger_amount"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecomputeResult carries the refreshed budget and any alerts the
// refresh emitted
type RecomputeResult struct {
	Budget Budget        `json:"budget"`
	Alerts []BudgetAlert `json:"alerts"`
}

// GenerateRecommendationsRequest runs the optimization engine
type GenerateRecommendationsRequest struct {
	Scope              Scope  `json:"scope"`
	Start              string `json:"start"`
	End                string `json:"end"`
	MinImpact          string `json:"min_impact,omitempty"`
	MaxRisk            string `json:"max_risk,omitempty"`
	MaxRecommendations int    `json:"max_recommendations,omitempty"`
	AllowEmpty         bool   `json:"allow_empty,omitempty"`
}

// Recommendation is a cost optimization opportunity
type Recommendation struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Impact           string    `json:"impact"`
	PotentialSavings float64   `json:"potential_savings"`
	Effort           string    `json:"effort"`
	RiskLevel        string    `json:"risk_level"`
	Resources        []string  `json:"resources,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// RunScenarioRequest executes a what-if scenario
type RunScenarioRequest struct {
	Scope       Scope           `json:"scope"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Type        string          `json:"type"` // rightsizing, migration, reservation, spot, growth_adjustment
	Parameters  json.RawMessage `json:"parameters"`
	HorizonDays int             `json:"horizon_days,omitempty"`
	Async       bool            `json:"async,omitempty"`
}

// Scenario is one scenario run
type Scenario struct {
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

// CompareScenariosRequest ranks completed scenarios
type CompareScenariosRequest struct {
	ScenarioIDs    []string `json:"scenario_ids"`
	AnalysisMethod string   `json:"analysis_method,omitempty"`
}

// ScenarioSummary is one ranked entry of a comparison
type ScenarioSummary struct {
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

// Comparison ranks multiple completed scenarios
type Comparison struct {
	ScenarioIDs           []string          `json:"scenario_ids"`
	Summaries             []ScenarioSummary `json:"summaries"`
	BestScenarioID        string            `json:"best_scenario_id"`
	WorstScenarioID       string            `json:"worst_scenario_id"`
	TotalPotentialSavings float64           `json:"total_potential_savings"`
	Method                string            `json:"analysis_method"`
}
