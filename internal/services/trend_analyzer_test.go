package services

import (
	"math"
	"testing"

	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/testutil"
)

func newTestAnalyzer() *TrendAnalyzer {
	return NewTrendAnalyzer(0.05, 7, 2.0, testutil.NewLogger())
}

func TestAnalyzeInsufficientData(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name   string
		series *usage.Series
	}{
		{name: "nil series", series: nil},
		{name: "empty series", series: testutil.DailySeries(usage.Scope{})},
		{name: "single point", series: testutil.DailySeries(usage.Scope{}, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(tt.series, 0, false)
			if !errors.IsCode(err, errors.ErrCodeInsufficientData) {
				t.Errorf("Expected INSUFFICIENT_DATA, got %v", err)
			}
		})
	}
}

func TestAnalyzeConstantSeries(t *testing.T) {
	a := newTestAnalyzer()
	series := testutil.ConstantSeries(usage.Scope{TeamID: "team-1"}, 250, 30)

	result, err := a.Analyze(series, 0, true)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Direction != analytics.TrendFlat {
		t.Errorf("Expected flat direction, got %s", result.Direction)
	}
	if result.GrowthRate != 0 {
		t.Errorf("Expected zero growth rate, got %f", result.GrowthRate)
	}
	if result.Volatility != 0 {
		t.Errorf("Expected zero volatility, got %f", result.Volatility)
	}
	if len(result.Anomalies) != 0 {
		t.Errorf("Expected no anomalies on a constant series, got %d", len(result.Anomalies))
	}
	if result.PointCount != 30 {
		t.Errorf("Expected point count 30, got %d", result.PointCount)
	}
}

func TestAnalyzeDirection(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name   string
		series *usage.Series
		want   analytics.TrendDirection
	}{
		{
			name:   "steadily rising",
			series: testutil.LinearSeries(usage.Scope{}, 100, 5, 28),
			want:   analytics.TrendRising,
		},
		{
			name:   "steadily falling",
			series: testutil.LinearSeries(usage.Scope{}, 300, -5, 28),
			want:   analytics.TrendFalling,
		},
		{
			name:   "drift inside the flat band",
			series: testutil.LinearSeries(usage.Scope{}, 1000, 0.1, 28),
			want:   analytics.TrendFlat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := a.Analyze(tt.series, 7, false)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if result.Direction != tt.want {
				t.Errorf("Expected %s, got %s (growth %f)", tt.want, result.Direction, result.GrowthRate)
			}
		})
	}
}

func TestAnalyzeGrowthRate(t *testing.T) {
	a := newTestAnalyzer()

	// first week averages 100, last week averages 150
	amounts := make([]float64, 28)
	for i := range amounts {
		switch {
		case i < 7:
			amounts[i] = 100
		case i >= 21:
			amounts[i] = 150
		default:
			amounts[i] = 120
		}
	}
	series := testutil.DailySeries(usage.Scope{}, amounts...)

	result, err := a.Analyze(series, 7, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if math.Abs(result.GrowthRate-0.5) > 1e-9 {
		t.Errorf("Expected growth rate 0.5, got %f", result.GrowthRate)
	}
}

func TestAnalyzeAnomalies(t *testing.T) {
	a := newTestAnalyzer()

	// stable baseline with one large spike in the middle
	amounts := []float64{
		100, 102, 98, 101, 99, 103, 97,
		100, 102, 98, 500, 99, 103, 97,
		100, 102, 98, 101, 99, 103, 97,
	}
	series := testutil.DailySeries(usage.Scope{}, amounts...)

	result, err := a.Analyze(series, 7, true)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Anomalies) != 1 {
		t.Fatalf("Expected exactly 1 anomaly, got %d", len(result.Anomalies))
	}

	anom := result.Anomalies[0]
	if anom.Observed != 500 {
		t.Errorf("Expected the spike at 500 to be flagged, got observed %f", anom.Observed)
	}
	if anom.Severity != analytics.SeverityHigh {
		t.Errorf("Expected high severity for a massive spike, got %s", anom.Severity)
	}
	if anom.DeviationScore <= 2.0 {
		t.Errorf("Expected deviation score above the threshold, got %f", anom.DeviationScore)
	}
	if !anom.Timestamp.Equal(series.Points[10].Timestamp) {
		t.Errorf("Expected anomaly at index 10, got timestamp %v", anom.Timestamp)
	}
}

func TestAnalyzeAnomaliesDisabled(t *testing.T) {
	a := newTestAnalyzer()
	amounts := []float64{100, 100, 100, 100, 100, 500, 100, 100, 100, 100, 100}
	series := testutil.DailySeries(usage.Scope{}, amounts...)

	result, err := a.Analyze(series, 3, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Anomalies) != 0 {
		t.Errorf("Expected no anomaly scan when disabled, got %d", len(result.Anomalies))
	}
}

func TestAnalyzeWindowClipping(t *testing.T) {
	a := newTestAnalyzer()

	// 4 points with a requested window far larger than the series
	series := testutil.DailySeries(usage.Scope{}, 100, 110, 120, 130)

	result, err := a.Analyze(series, 50, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// clipped to n/2 = 2: first window mean 105, last window mean 125
	want := (125.0 - 105.0) / 105.0
	if math.Abs(result.GrowthRate-want) > 1e-9 {
		t.Errorf("Expected growth rate %f with clipped window, got %f", want, result.GrowthRate)
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	a := newTestAnalyzer()
	amounts := []float64{100, 130, 90, 160, 85, 170, 120, 140, 95, 180, 110, 150}
	series := testutil.DailySeries(usage.Scope{}, amounts...)

	first, err := a.Analyze(series, 3, true)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := a.Analyze(series, 3, true)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if first.GrowthRate != second.GrowthRate ||
		first.Volatility != second.Volatility ||
		first.Direction != second.Direction ||
		len(first.Anomalies) != len(second.Anomalies) {
		t.Error("Identical inputs produced different results")
	}
}
