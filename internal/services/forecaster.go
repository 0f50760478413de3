package services

import (
	"fmt"
	"math"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/metrics"
	"github.com/pratik-mahalle/costpilot/internal/pkg/stats"
)

// Forecaster fits a model to a historical cost series and projects future
// values with confidence bounds. Pure computation: no side effects beyond
// metrics, safe to call in parallel across independent inputs.
type Forecaster struct {
	seasonalPeriod int
	logger         *logger.Logger
}

// NewForecaster creates a new forecaster. seasonalPeriod is the number of
// points in one seasonal cycle (7 for daily data with a weekly pattern).
func NewForecaster(seasonalPeriod int, log *logger.Logger) *Forecaster {
	if seasonalPeriod < 2 {
		seasonalPeriod = 7
	}
	return &Forecaster{
		seasonalPeriod: seasonalPeriod,
		logger:         log,
	}
}

// Forecast projects the series horizonDays into the future using the given
// method. confidenceLevel must be in (0,1); bounds widen monotonically with
// distance into the future.
func (f *Forecaster) Forecast(series *usage.Series, method analytics.ForecastMethod, horizonDays int, confidenceLevel float64) (*analytics.ForecastResult, error) {
	if horizonDays <= 0 {
		return nil, errors.InvalidParameter("horizon_days", "> 0", fmt.Sprintf("%d", horizonDays))
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return nil, errors.InvalidParameter("confidence_level", "(0,1)", fmt.Sprintf("%g", confidenceLevel))
	}
	if !method.IsValid() {
		return nil, errors.InvalidParameter("method", "linear|exponential|seasonal|growth", string(method))
	}

	minPoints := 2
	if method == analytics.MethodSeasonal {
		minPoints = 2 * f.seasonalPeriod
	}
	if series == nil || series.Len() < minPoints {
		got := 0
		if series != nil {
			got = series.Len()
		}
		return nil, errors.InsufficientData(
			fmt.Sprintf("method %s requires at least %d points, got %d", method, minPoints, got))
	}

	amounts := series.Amounts()
	var fitted func(x float64) float64

	switch method {
	case analytics.MethodExponential:
		fitted = f.fitExponential(amounts)
	case analytics.MethodSeasonal:
		fitted = f.fitSeasonal(amounts)
	case analytics.MethodGrowth:
		fitted = f.fitGrowth(amounts)
	default:
		fitted = f.fitLinear(amounts)
	}

	result := f.project(series, fitted, method, horizonDays, confidenceLevel)

	metrics.RecordForecast(string(method))
	f.logger.WithFields(map[string]interface{}{
		"method":       method,
		"points":       series.Len(),
		"horizon_days": horizonDays,
	}).Debug("Forecast generated")

	return result, nil
}

// fitLinear fits an ordinary least-squares trend line
func (f *Forecaster) fitLinear(amounts []float64) func(float64) float64 {
	x := ordinals(len(amounts))
	alpha, beta := stats.LinearFit(x, amounts)
	return func(xi float64) float64 { return alpha + beta*xi }
}

// fitExponential fits on log-amounts, falling back to linear when any
// amount is non-positive
func (f *Forecaster) fitExponential(amounts []float64) func(float64) float64 {
	logs := make([]float64, len(amounts))
	for i, a := range amounts {
		if a <= 0 {
			f.logger.Debug("Non-positive amount in series, exponential fit falling back to linear")
			return f.fitLinear(amounts)
		}
		logs[i] = math.Log(a)
	}
	x := ordinals(len(amounts))
	alpha, beta := stats.LinearFit(x, logs)
	return func(xi float64) float64 { return math.Exp(alpha + beta*xi) }
}

// fitSeasonal decomposes into a linear trend plus per-position offsets
// within the seasonal period, then extrapolates trend and re-applies the
// offsets
func (f *Forecaster) fitSeasonal(amounts []float64) func(float64) float64 {
	x := ordinals(len(amounts))
	alpha, beta := stats.LinearFit(x, amounts)

	period := f.seasonalPeriod
	offsetSum := make([]float64, period)
	offsetCnt := make([]int, period)
	for i, a := range amounts {
		pos := i % period
		offsetSum[pos] += a - (alpha + beta*float64(i))
		offsetCnt[pos]++
	}
	offsets := make([]float64, period)
	for pos := range offsets {
		if offsetCnt[pos] > 0 {
			offsets[pos] = offsetSum[pos] / float64(offsetCnt[pos])
		}
	}

	return func(xi float64) float64 {
		pos := int(math.Round(xi)) % period
		if pos < 0 {
			pos += period
		}
		return alpha + beta*xi + offsets[pos]
	}
}

// fitGrowth applies the geometric mean period-over-period growth rate
// multiplicatively from the last observation
func (f *Forecaster) fitGrowth(amounts []float64) func(float64) float64 {
	n := len(amounts)
	first, last := amounts[0], amounts[n-1]
	if first <= 0 || last <= 0 {
		f.logger.Debug("Non-positive endpoint in series, growth fit falling back to linear")
		return f.fitLinear(amounts)
	}
	rate := math.Pow(last/first, 1/float64(n-1))
	return func(xi float64) float64 {
		return first * math.Pow(rate, xi)
	}
}

// project evaluates the fitted model over the horizon and derives bounds
// from the residual standard error scaled by the confidence level z-score.
// The prediction-interval factor grows with distance from the sample mean,
// so bound width is non-decreasing into the future.
func (f *Forecaster) project(series *usage.Series, fitted func(float64) float64, method analytics.ForecastMethod, horizonDays int, confidenceLevel float64) *analytics.ForecastResult {
	amounts := series.Amounts()
	n := len(amounts)

	// Residual standard error on the original scale
	var rss float64
	for i, a := range amounts {
		r := a - fitted(float64(i))
		rss += r * r
	}
	var se float64
	if n > 2 {
		se = math.Sqrt(rss / float64(n-2))
	}

	z := stats.ZScore(confidenceLevel)
	xbar := float64(n-1) / 2
	var sxx float64
	for i := 0; i < n; i++ {
		d := float64(i) - xbar
		sxx += d * d
	}

	interval := series.Interval()
	lastTS := series.Points[n-1].Timestamp

	points := make([]analytics.ForecastPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		xi := float64(n - 1 + i)
		predicted := fitted(xi)

		factor := 1.0
		if sxx > 0 {
			d := xi - xbar
			factor = math.Sqrt(1 + 1/float64(n) + d*d/sxx)
		}
		width := z * se * factor

		points = append(points, analytics.ForecastPoint{
			Timestamp: lastTS.Add(time.Duration(i) * interval),
			Predicted: predicted,
			Lower:     predicted - width,
			Upper:     predicted + width,
		})
	}

	return &analytics.ForecastResult{
		Method:          method,
		GeneratedAt:     time.Now().UTC(),
		Points:          points,
		ConfidenceLevel: confidenceLevel,
	}
}

// ordinals returns [0, 1, ..., n-1]
func ordinals(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}
