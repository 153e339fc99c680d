package formulas

import (
	"github.com/markcheno/go-talib"
)

// RollingDrawdown returns the percent move of the last close relative to
// the highest close within the trailing window. Always <= 0 when the last
// close sits below the window high. Returns nil when the series is shorter
// than two points.
func RollingDrawdown(closes []float64, window int) *float64 {
	if len(closes) < 2 || window < 1 {
		return nil
	}
	if window > len(closes) {
		window = len(closes)
	}

	tail := closes[len(closes)-window:]
	high := talib.Max(tail, len(tail))[len(tail)-1]
	if high == 0 {
		return nil
	}

	last := closes[len(closes)-1]
	dd := (last - high) / high * 100
	return &dd
}

// DistanceFromLow returns how far, in percent, the last close sits above
// the lowest low of the trailing window. Returns nil when the series is
// shorter than two points.
func DistanceFromLow(lows []float64, last float64, window int) *float64 {
	if len(lows) < 2 || window < 1 {
		return nil
	}
	if window > len(lows) {
		window = len(lows)
	}

	tail := lows[len(lows)-window:]
	low := talib.Min(tail, len(tail))[len(tail)-1]
	if low == 0 {
		return nil
	}

	d := (last - low) / low * 100
	return &d
}

// MaxSingleDayDrop returns the most negative day-over-day percent return
// within the trailing window. Positive-only windows return the smallest
// gain. Returns nil when there are fewer than two closes.
func MaxSingleDayDrop(closes []float64, window int) *float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := DailyReturns(closes)
	if window < len(returns) {
		returns = returns[len(returns)-window:]
	}

	worst := returns[0]
	for _, r := range returns[1:] {
		if r < worst {
			worst = r
		}
	}
	worst *= 100
	return &worst
}

// SMA returns the simple moving average of the last close over the window,
// or nil when there are not enough observations.
func SMA(closes []float64, window int) *float64 {
	if window < 1 || len(closes) < window {
		return nil
	}
	out := talib.Sma(closes, window)
	last := out[len(out)-1]
	return &last
}
