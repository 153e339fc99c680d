// Package formulas contains the pure indicator math used by the analysis
// service. Functions take plain slices and have no side effects.
package formulas

import "math"

// DefaultRSIWindow is the standard 14-period lookback.
const DefaultRSIWindow = 14

// OversoldThreshold is the conventional RSI oversold line.
const OversoldThreshold = 30.0

// RSI computes the relative strength index of the last close using Wilder's
// recursive smoothing: gains and losses are averaged with an exponential
// weight of alpha = 1/window, seeded at zero so every delta enters with
// weight alpha and decays geometrically, not with a simple mean over the
// first window. Returns nil when fewer than window+1 closes are available.
// A lossless run saturates at 100.
func RSI(closes []float64, window int) *float64 {
	series := RSISeries(closes, window)
	if series == nil {
		return nil
	}
	last := series[len(series)-1]
	if math.IsNaN(last) {
		return nil
	}
	return &last
}

// RSISeries computes the RSI at every index. The first window entries are
// NaN while the averages warm up. Returns nil when fewer than window+1
// closes are available.
func RSISeries(closes []float64, window int) []float64 {
	if window <= 0 || len(closes) < window+1 {
		return nil
	}

	alpha := 1.0 / float64(window)

	out := make([]float64, len(closes))
	for i := 0; i < window && i < len(out); i++ {
		out[i] = math.NaN()
	}

	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		avgGain = (1-alpha)*avgGain + alpha*gain
		avgLoss = (1-alpha)*avgLoss + alpha*loss

		if i < window {
			continue
		}

		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}

	return out
}

// DaysOversold counts how many consecutive sessions, ending at the most
// recent one, have had RSI below the oversold line. The scan is capped so a
// long-dead instrument does not report an unbounded streak.
func DaysOversold(closes []float64, window int, cap int) int {
	series := RSISeries(closes, window)
	if series == nil {
		return 0
	}

	days := 0
	for i := len(series) - 1; i >= 0 && days < cap; i-- {
		if math.IsNaN(series[i]) || series[i] >= OversoldThreshold {
			break
		}
		days++
	}
	return days
}
