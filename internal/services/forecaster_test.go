package services

import (
	"math"
	"testing"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/domain/analytics"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/testutil"
)

func TestForecastValidation(t *testing.T) {
	f := NewForecaster(7, testutil.NewLogger())
	series := testutil.LinearSeries(usage.Scope{TeamID: "team-1"}, 100, 10, 30)

	tests := []struct {
		name            string
		series          *usage.Series
		method          analytics.ForecastMethod
		horizonDays     int
		confidenceLevel float64
		wantCode        string
	}{
		{
			name:            "zero horizon",
			series:          series,
			method:          analytics.MethodLinear,
			horizonDays:     0,
			confidenceLevel: 0.95,
			wantCode:        errors.ErrCodeInvalidParameter,
		},
		{
			name:            "negative horizon",
			series:          series,
			method:          analytics.MethodLinear,
			horizonDays:     -5,
			confidenceLevel: 0.95,
			wantCode:        errors.ErrCodeInvalidParameter,
		},
		{
			name:            "confidence level at 1",
			series:          series,
			method:          analytics.MethodLinear,
			horizonDays:     7,
			confidenceLevel: 1.0,
			wantCode:        errors.ErrCodeInvalidParameter,
		},
		{
			name:            "confidence level at 0",
			series:          series,
			method:          analytics.MethodLinear,
			horizonDays:     7,
			confidenceLevel: 0,
			wantCode:        errors.ErrCodeInvalidParameter,
		},
		{
			name:            "unknown method",
			series:          series,
			method:          analytics.ForecastMethod("arima"),
			horizonDays:     7,
			confidenceLevel: 0.95,
			wantCode:        errors.ErrCodeInvalidParameter,
		},
		{
			name:            "single point",
			series:          testutil.DailySeries(usage.Scope{}, 100),
			method:          analytics.MethodLinear,
			horizonDays:     7,
			confidenceLevel: 0.95,
			wantCode:        errors.ErrCodeInsufficientData,
		},
		{
			name:            "nil series",
			series:          nil,
			method:          analytics.MethodLinear,
			horizonDays:     7,
			confidenceLevel: 0.95,
			wantCode:        errors.ErrCodeInsufficientData,
		},
		{
			name:            "seasonal needs two full periods",
			series:          testutil.LinearSeries(usage.Scope{}, 100, 1, 13),
			method:          analytics.MethodSeasonal,
			horizonDays:     7,
			confidenceLevel: 0.95,
			wantCode:        errors.ErrCodeInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Forecast(tt.series, tt.method, tt.horizonDays, tt.confidenceLevel)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.IsCode(err, tt.wantCode) {
				t.Errorf("Expected error code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestForecastLinear(t *testing.T) {
	f := NewForecaster(7, testutil.NewLogger())

	// amounts are 100 + 10*i for i in 0..29
	series := testutil.LinearSeries(usage.Scope{TeamID: "team-1"}, 100, 10, 30)

	result, err := f.Forecast(series, analytics.MethodLinear, 5, 0.95)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if len(result.Points) != 5 {
		t.Fatalf("Expected 5 points, got %d", len(result.Points))
	}

	// perfectly linear history extrapolates exactly
	for i, p := range result.Points {
		want := 100 + 10*float64(30+i)
		if math.Abs(p.Predicted-want) > 1e-6 {
			t.Errorf("Point %d: expected %.2f, got %.6f", i, want, p.Predicted)
		}
	}

	// zero residuals collapse the bounds onto the prediction
	for i, p := range result.Points {
		if math.Abs(p.Upper-p.Lower) > 1e-6 {
			t.Errorf("Point %d: expected tight bounds on noiseless data, got [%f, %f]", i, p.Lower, p.Upper)
		}
	}

	// timestamps continue the daily grid
	interval := series.Interval()
	last := series.Points[series.Len()-1].Timestamp
	for i, p := range result.Points {
		want := last.Add(time.Duration(i+1) * interval)
		if !p.Timestamp.Equal(want) {
			t.Errorf("Point %d: expected timestamp %v, got %v", i, want, p.Timestamp)
		}
	}
}

func TestForecastBoundsWiden(t *testing.T) {
	f := NewForecaster(7, testutil.NewLogger())

	// noisy rising series
	amounts := []float64{100, 118, 105, 131, 122, 145, 139, 152, 166, 148, 171, 180, 162, 190}
	series := testutil.DailySeries(usage.Scope{}, amounts...)

	result, err := f.Forecast(series, analytics.MethodLinear, 10, 0.9)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	prev := -1.0
	for i, p := range result.Points {
		width := p.Upper - p.Lower
		if width <= 0 {
			t.Fatalf("Point %d: expected positive bound width on noisy data, got %f", i, width)
		}
		if width < prev {
			t.Errorf("Point %d: bound width %f narrower than previous %f", i, width, prev)
		}
		prev = width
	}
}

func TestForecastExponential(t *testing.T) {
	f := NewForecaster(7, testutil.NewLogger())

	t.Run("pure exponential history", func(t *testing.T) {
		// amounts are 100 * 1.05^i
		amounts := make([]float64, 20)
		for i := range amounts {
			amounts[i] = 100 * math.Pow(1.05, float64(i))
		}
		series := testutil.DailySeries(usage.Scope{}, amounts...)

		result, err := f.Forecast(series, analytics.MethodExponential, 3, 0.95)
		if err != nil {
			t.Fatalf("Forecast failed: %v", err)
		}
		for i, p := range result.Points {
			want := 100 * math.Pow(1.05, float64(20+i))
			if math.Abs(p.Predicted-want)/want > 1e-6 {
				t.Errorf("Point %d: expected %.4f, got %.4f", i, want, p.Predicted)
			}
		}
	})

	t.Run("non-positive amounts fall back to linear", func(t *testing.T) {
		series := testutil.DailySeries(usage.Scope{}, 10, 0, 10, 20, 30)
		result, err := f.Forecast(series, analytics.MethodExponential, 2, 0.95)
		if err != nil {
			t.Fatalf("Forecast failed: %v", err)
		}
		if len(result.Points) != 2 {
			t.Fatalf("Expected 2 points, got %d", len(result.Points))
		}
		for i, p := range result.Points {
			if math.IsNaN(p.Predicted) || math.IsInf(p.Predicted, 0) {
				t.Errorf("Point %d: non-finite prediction %f", i, p.Predicted)
			}
		}
	})
}

func TestForecastSeasonal(t *testing.T) {
	f := NewForecaster(7, testutil.NewLogger())

	// flat weekday cost with a weekend dip, three full weeks
	week := []float64{100, 100, 100, 100, 100, 60, 60}
	amounts := make([]float64, 0, 21)
	for i := 0; i < 3; i++ {
		amounts = append(amounts, week...)
	}
	series := testutil.DailySeries(usage.Scope{}, amounts...)

	result, err := f.Forecast(series, analytics.MethodSeasonal, 7, 0.95)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	// the projected week keeps the weekend dip: positions 5 and 6 sit well
	// below the weekday level
	weekday := result.Points[0].Predicted
	for _, pos := range []int{5, 6} {
		if result.Points[pos].Predicted > weekday-20 {
			t.Errorf("Position %d: expected weekend dip below %.2f, got %.2f",
				pos, weekday-20, result.Points[pos].Predicted)
		}
	}
}

func TestForecastGrowth(t *testing.T) {
	f := NewForecaster(7, testutil.NewLogger())

	t.Run("geometric growth from endpoints", func(t *testing.T) {
		// doubles over 10 steps
		amounts := make([]float64, 11)
		for i := range amounts {
			amounts[i] = 100 * math.Pow(2, float64(i)/10)
		}
		series := testutil.DailySeries(usage.Scope{}, amounts...)

		result, err := f.Forecast(series, analytics.MethodGrowth, 10, 0.95)
		if err != nil {
			t.Fatalf("Forecast failed: %v", err)
		}

		// after ten more steps the amount should double again
		lastPredicted := result.Points[9].Predicted
		if math.Abs(lastPredicted-400) > 1 {
			t.Errorf("Expected roughly 400 after doubling twice, got %.2f", lastPredicted)
		}
	})

	t.Run("non-positive endpoint falls back to linear", func(t *testing.T) {
		series := testutil.DailySeries(usage.Scope{}, 0, 10, 20, 30)
		result, err := f.Forecast(series, analytics.MethodGrowth, 2, 0.95)
		if err != nil {
			t.Fatalf("Forecast failed: %v", err)
		}
		if math.Abs(result.Points[0].Predicted-40) > 1e-6 {
			t.Errorf("Expected linear fallback to 40, got %.4f", result.Points[0].Predicted)
		}
	})
}

func TestForecastDeterminism(t *testing.T) {
	f := NewForecaster(7, testutil.NewLogger())
	series := testutil.DailySeries(usage.Scope{}, 100, 118, 105, 131, 122, 145, 139)

	first, err := f.Forecast(series, analytics.MethodLinear, 5, 0.95)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	second, err := f.Forecast(series, analytics.MethodLinear, 5, 0.95)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	for i := range first.Points {
		if first.Points[i].Predicted != second.Points[i].Predicted ||
			first.Points[i].Lower != second.Points[i].Lower ||
			first.Points[i].Upper != second.Points[i].Upper {
			t.Errorf("Point %d differs between identical runs", i)
		}
	}
}
