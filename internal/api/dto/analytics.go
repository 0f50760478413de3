package dto

import (
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
)

// ScopeDTO selects the entity a request operates on. Empty fields match all.
type ScopeDTO struct {
	TeamID      string `json:"team_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	Region      string `json:"region,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// ForecastRequest asks for a cost projection over a history window
type ForecastRequest struct {
	Scope           ScopeDTO `json:"scope"`
	Start           string   `json:"start" validate:"required"`
	End             string   `json:"end" validate:"required"`
	Method          string   `json:"method" validate:"required,oneof=linear exponential seasonal growth"`
	HorizonDays     int      `json:"horizon_days" validate:"required,gt=0,lte=365"`
	ConfidenceLevel float64  `json:"confidence_level,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// ForecastPointDTO is one projected point with its confidence bounds
type ForecastPointDTO struct {
	Timestamp time.Time `json:"timestamp"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower_bound"`
	Upper     float64   `json:"upper_bound"`
}

// ForecastResponse carries a generated forecast
type ForecastResponse struct {
	Method          string             `json:"method"`
	GeneratedAt     time.Time          `json:"generated_at"`
	ConfidenceLevel float64            `json:"confidence_level"`
	Points          []ForecastPointDTO `json:"points"`
	Total           float64            `json:"projected_total"`
}

// NewForecastResponse maps a forecast result into its API shape
func NewForecastResponse(r *analytics.ForecastResult) ForecastResponse {
	points := make([]ForecastPointDTO, len(r.Points))
	for i, p := range r.Points {
		points[i] = ForecastPointDTO{
			Timestamp: p.Timestamp,
			Predicted: p.Predicted,
			Lower:     p.Lower,
			Upper:     p.Upper,
		}
	}
	return ForecastResponse{
		Method:          string(r.Method),
		GeneratedAt:     r.GeneratedAt,
		ConfidenceLevel: r.ConfidenceLevel,
		Points:          points,
		Total:           r.Total(),
	}
}

// TrendRequest asks for a trend summary over a history window
type TrendRequest struct {
	Scope           ScopeDTO `json:"scope"`
	Start           string   `json:"start" validate:"required"`
	End             string   `json:"end" validate:"required"`
	WindowSize      int      `json:"window_size,omitempty" validate:"omitempty,gte=1"`
	DetectAnomalies bool     `json:"detect_anomalies,omitempty"`
}

// AnomalyDTO is one flagged observation
type AnomalyDTO struct {
	Timestamp      time.Time `json:"timestamp"`
	Observed       float64   `json:"observed"`
	Expected       float64   `json:"expected"`
	DeviationScore float64   `json:"deviation_score"`
	Severity       string    `json:"severity"`
}

// TrendResponse carries a trend analysis result
type TrendResponse struct {
	Period     string       `json:"period"`
	PointCount int          `json:"point_count"`
	Direction  string       `json:"direction"`
	GrowthRate float64      `json:"growth_rate"`
	Volatility float64      `json:"volatility"`
	Anomalies  []AnomalyDTO `json:"anomalies"`
}

// NewTrendResponse maps a trend result into its API shape
func NewTrendResponse(r *analytics.TrendResult) TrendResponse {
	anomalies := make([]AnomalyDTO, len(r.Anomalies))
	for i, a := range r.Anomalies {
		anomalies[i] = AnomalyDTO{
			Timestamp:      a.Timestamp,
			Observed:       a.Observed,
			Expected:       a.Expected,
			DeviationScore: a.DeviationScore,
			Severity:       a.Severity,
		}
	}
	return TrendResponse{
		Period:     r.Period,
		PointCount: r.PointCount,
		Direction:  string(r.Direction),
		GrowthRate: r.GrowthRate,
		Volatility: r.Volatility,
		Anomalies:  anomalies,
	}
}
