package testutil

import (
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
)

// SeriesStart is the first timestamp of series built by the helpers
var SeriesStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// NewLogger returns a quiet logger for tests
func NewLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

// DailySeries builds a daily series from the given amounts starting at
// SeriesStart
func DailySeries(scope usage.Scope, amounts ...float64) *usage.Series {
	points := make([]usage.CostPoint, len(amounts))
	for i, a := range amounts {
		points[i] = usage.CostPoint{
			Timestamp: SeriesStart.AddDate(0, 0, i),
			Amount:    a,
			Currency:  "USD",
		}
	}
	return &usage.Series{Scope: scope, Points: points}
}

// LinearSeries builds a daily series amount = base + slope*i for n days
func LinearSeries(scope usage.Scope, base, slope float64, n int) *usage.Series {
	amounts := make([]float64, n)
	for i := range amounts {
		amounts[i] = base + slope*float64(i)
	}
	return DailySeries(scope, amounts...)
}

// ConstantSeries builds a daily series with the same amount for n days
func ConstantSeries(scope usage.Scope, amount float64, n int) *usage.Series {
	amounts := make([]float64, n)
	for i := range amounts {
		amounts[i] = amount
	}
	return DailySeries(scope, amounts...)
}
