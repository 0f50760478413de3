package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// LinearFit fits y = alpha + beta*x by ordinary least squares
func LinearFit(x, y []float64) (alpha, beta float64) {
	if len(x) == 0 || len(x) != len(y) {
		return 0, 0
	}
	return stat.LinearRegression(x, y, nil, false)
}

// ResidualStdErr calculates the residual standard error of a linear fit
// y ~ alpha + beta*x, with n-2 degrees of freedom.
func ResidualStdErr(x, y []float64, alpha, beta float64) float64 {
	if len(x) < 3 || len(x) != len(y) {
		return 0
	}
	var rss float64
	for i := range x {
		r := y[i] - (alpha + beta*x[i])
		rss += r * r
	}
	return math.Sqrt(rss / float64(len(x)-2))
}

// Deltas converts a series of values to period-over-period differences
// Deltas[i] = values[i+1] - values[i]
func Deltas(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	deltas := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		deltas[i-1] = values[i] - values[i-1]
	}
	return deltas
}

// CoefficientOfVariation calculates stddev/|mean| of the values.
// Returns 0 when the mean is 0 or the series has no variance.
func CoefficientOfVariation(values []float64) float64 {
	m := Mean(values)
	if m == 0 {
		return 0
	}
	return StdDev(values) / math.Abs(m)
}

// ZScore returns the two-sided standard normal critical value for the
// given confidence level, e.g. 1.96 for 0.95.
func ZScore(confidenceLevel float64) float64 {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return 0
	}
	return distuv.UnitNormal.Quantile(0.5 + confidenceLevel/2)
}

// RoundHalfUp rounds v to the given number of decimal places, half up
func RoundHalfUp(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(v*scale+0.5) / scale
}
