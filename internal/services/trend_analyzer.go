package services

import (
	"fmt"

	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/metrics"
	"github.com/pratik-mahalle/costpilot/internal/pkg/stats"
)

// TrendAnalyzer computes growth rate, volatility and anomalies for a cost
// series. Pure computation, safe to call in parallel.
type TrendAnalyzer struct {
	flatBand      float64 // fractional band around zero treated as flat
	defaultWindow int
	anomalySigma  float64 // deviation threshold in standard deviations
	logger        *logger.Logger
}

// NewTrendAnalyzer creates a new trend analyzer. Zero values fall back to
// the documented defaults: 5% flat band, window of 7, 2.0σ threshold.
func NewTrendAnalyzer(flatBand float64, defaultWindow int, anomalySigma float64, log *logger.Logger) *TrendAnalyzer {
	if flatBand <= 0 {
		flatBand = 0.05
	}
	if defaultWindow < 1 {
		defaultWindow = 7
	}
	if anomalySigma <= 0 {
		anomalySigma = 2.0
	}
	return &TrendAnalyzer{
		flatBand:      flatBand,
		defaultWindow: defaultWindow,
		anomalySigma:  anomalySigma,
		logger:        log,
	}
}

// Analyze summarizes the series. windowSize 0 uses the default; values
// above half the series length are clipped down to it.
func (t *TrendAnalyzer) Analyze(series *usage.Series, windowSize int, detectAnomalies bool) (*analytics.TrendResult, error) {
	if series == nil || series.Len() < 2 {
		got := 0
		if series != nil {
			got = series.Len()
		}
		return nil, errors.InsufficientData(
			fmt.Sprintf("trend analysis requires at least 2 points, got %d", got))
	}

	amounts := series.Amounts()
	n := len(amounts)

	if windowSize == 0 {
		windowSize = t.defaultWindow
	}
	if windowSize < 1 {
		windowSize = 1
	}
	if windowSize > n/2 {
		windowSize = n / 2
	}
	if windowSize < 1 {
		windowSize = 1
	}

	growth := t.growthRate(amounts, windowSize)
	volatility := stats.CoefficientOfVariation(stats.Deltas(amounts))

	result := &analytics.TrendResult{
		Period: fmt.Sprintf("%s..%s",
			series.Points[0].Timestamp.Format("2006-01-02"),
			series.Points[n-1].Timestamp.Format("2006-01-02")),
		PointCount: n,
		Direction:  t.direction(growth),
		GrowthRate: growth,
		Volatility: volatility,
		Anomalies:  []analytics.Anomaly{},
	}

	if detectAnomalies {
		result.Anomalies = t.findAnomalies(series, windowSize)
		for _, a := range result.Anomalies {
			metrics.RecordAnomaly(a.Severity)
		}
	}

	t.logger.WithFields(map[string]interface{}{
		"points":      n,
		"direction":   result.Direction,
		"growth_rate": growth,
		"volatility":  volatility,
		"anomalies":   len(result.Anomalies),
	}).Debug("Trend analyzed")

	return result, nil
}

// growthRate is the relative change between the mean of the first and the
// mean of the last window
func (t *TrendAnalyzer) growthRate(amounts []float64, window int) float64 {
	firstMean := stats.Mean(amounts[:window])
	lastMean := stats.Mean(amounts[len(amounts)-window:])
	if firstMean == 0 {
		return 0
	}
	return (lastMean - firstMean) / firstMean
}

func (t *TrendAnalyzer) direction(growth float64) analytics.TrendDirection {
	switch {
	case growth > t.flatBand:
		return analytics.TrendRising
	case growth < -t.flatBand:
		return analytics.TrendFalling
	default:
		return analytics.TrendFlat
	}
}

// findAnomalies flags points deviating from the mean of their surrounding
// moving window (the point itself excluded) by more than the configured
// number of standard deviations. A window with zero variance never flags.
func (t *TrendAnalyzer) findAnomalies(series *usage.Series, window int) []analytics.Anomaly {
	amounts := series.Amounts()
	n := len(amounts)
	anomalies := []analytics.Anomaly{}

	for i := 0; i < n; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi > n-1 {
			hi = n - 1
		}

		neighborhood := make([]float64, 0, hi-lo)
		for j := lo; j <= hi; j++ {
			if j != i {
				neighborhood = append(neighborhood, amounts[j])
			}
		}
		if len(neighborhood) < 3 {
			continue
		}

		mean := stats.Mean(neighborhood)
		sd := stats.StdDev(neighborhood)
		if sd == 0 {
			continue
		}

		score := (amounts[i] - mean) / sd
		if score < 0 {
			score = -score
		}
		if score > t.anomalySigma {
			anomalies = append(anomalies, analytics.Anomaly{
				Timestamp:      series.Points[i].Timestamp,
				Observed:       amounts[i],
				Expected:       mean,
				DeviationScore: score,
				Severity:       analytics.SeverityForDeviation(score),
			})
		}
	}
	return anomalies
}
