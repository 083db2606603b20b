package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average series for period.
// Entries before the first full window are left at zero by talib.
// Returns nil when period < 2 or there is not enough data.
func SMA(values []float64, period int) []float64 {
	if period < 2 || len(values) < period {
		return nil
	}
	return talib.Sma(values, period)
}

// LatestSMA returns the last simple moving average value, or nil if unavailable.
func LatestSMA(values []float64, period int) *float64 {
	sma := SMA(values, period)
	if len(sma) == 0 || math.IsNaN(sma[len(sma)-1]) {
		return nil
	}
	result := sma[len(sma)-1]
	return &result
}
