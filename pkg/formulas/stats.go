// Package formulas holds float statistics over value series. Results are for
// display only; valuation itself stays in decimal arithmetic.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear annualizes series sampled on exchange days
	TradingDaysPerYear = 252
	// CalendarDaysPerYear annualizes series sampled every day, like nightly portfolio snapshots
	CalendarDaysPerYear = 365
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

// CalculateReturns converts values to period-over-period fractional returns.
// A zero previous value yields a zero return for that step.
func CalculateReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			returns[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}

	return returns
}

// AnnualizedVolatility scales the standard deviation of returns by sqrt(periodsPerYear).
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(float64(periodsPerYear))
}

// MaxDrawdown returns the largest peak-to-trough loss as a positive fraction
// (0.25 = 25% below the running peak), or nil with fewer than two values.
func MaxDrawdown(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := values[0]

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	return &maxDrawdown
}
