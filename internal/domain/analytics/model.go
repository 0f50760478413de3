package analytics

import "time"

// ForecastMethod selects the model fitted to a historical series
type ForecastMethod string

const (
	MethodLinear      ForecastMethod = "linear"
	MethodExponential ForecastMethod = "exponential"
	MethodSeasonal    ForecastMethod = "seasonal"
	MethodGrowth      ForecastMethod = "growth"
)

// IsValid checks if the forecast method is known
func (m ForecastMethod) IsValid() bool {
	switch m {
	case MethodLinear, MethodExponential, MethodSeasonal, MethodGrowth:
		return true
	default:
		return false
	}
}

// ForecastPoint is a single projected value with confidence bounds.
// Invariant: Lower <= Predicted <= Upper.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// ForecastResult is the projection of a cost series into the future
type ForecastResult struct {
	Method          ForecastMethod  `json:"method"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Points          []ForecastPoint `json:"points"`
	ConfidenceLevel float64         `json:"confidence_level"` // (0,1)
}

// Total returns the sum of predicted values over the horizon
func (f *ForecastResult) Total() float64 {
	var sum float64
	for _, p := range f.Points {
		sum += p.Predicted
	}
	return sum
}

// TrendDirection classifies the overall movement of a series
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendFlat    TrendDirection = "flat"
)

// TrendResult summarizes growth, volatility and anomalies of a series
type TrendResult struct {
	Period     string         `json:"period"`
	PointCount int            `json:"point_count"`
	Direction  TrendDirection `json:"direction"`
	GrowthRate float64        `json:"growth_rate"` // fractional, can be negative
	Volatility float64        `json:"volatility"`  // non-negative
	Anomalies  []Anomaly      `json:"anomalies"`
}

// Anomaly is a point deviating from its local expectation
type Anomaly struct {
	Timestamp      time.Time `json:"timestamp"`
	Observed       float64   `json:"observed"`
	Expected       float64   `json:"expected"`
	DeviationScore float64   `json:"deviation_score"` // standard deviations
	Severity       string    `json:"severity"`
}

// Anomaly severity levels
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// SeverityForDeviation maps a deviation score in standard deviations to a
// severity band: low for 2-3σ, medium for 3-4σ, high above 4σ.
func SeverityForDeviation(score float64) string {
	switch {
	case score > 4:
		return SeverityHigh
	case score > 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
