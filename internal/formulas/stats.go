package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the conventional annualization factor.
const TradingDaysPerYear = 252

// DailyReturns computes simple day-over-day returns. The result is one
// element shorter than the input.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// AnnualizedVolatility estimates annualized volatility from daily closes.
// Returns nil under three closes, the sample deviation needs at least two
// returns.
func AnnualizedVolatility(closes []float64) *float64 {
	returns := DailyReturns(closes)
	if len(returns) < 2 {
		return nil
	}
	vol := stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
	return &vol
}

// MeanReturn is the average daily return, or nil under two closes.
func MeanReturn(closes []float64) *float64 {
	returns := DailyReturns(closes)
	if len(returns) == 0 {
		return nil
	}
	m := stat.Mean(returns, nil)
	return &m
}
