package screener

import (
	"time"

	"github.com/aristath/dipscan/internal/marketdata"
)

// DeclineForPeriod measures how far an instrument has fallen over the
// period, in percent. Three candidates are computed over the in-window
// candles -- drop from the period high, the worst single-day return, and
// the drop from the period start -- and the most negative wins, so a
// V-shaped week still registers its crash day. Under two in-window
// observations the measure falls back to the plain day-over-day change of
// the full series.
func DeclineForPeriod(series *marketdata.PriceSeries, period Period, now time.Time) float64 {
	window := series.Since(period.Start(now))
	if len(window) < 2 {
		return dayOverDay(series)
	}

	last := window[len(window)-1].Close

	high := window[0].Close
	for _, c := range window {
		if c.Close > high {
			high = c.Close
		}
	}

	fromHigh := 0.0
	if high != 0 {
		fromHigh = (last - high) / high * 100
	}

	worstDay := 0.0
	for i := 1; i < len(window); i++ {
		prev := window[i-1].Close
		if prev == 0 {
			continue
		}
		r := (window[i].Close - prev) / prev * 100
		if r < worstDay {
			worstDay = r
		}
	}

	fromStart := 0.0
	if start := window[0].Close; start != 0 {
		fromStart = (last - start) / start * 100
	}

	decline := fromHigh
	if worstDay < decline {
		decline = worstDay
	}
	if fromStart < decline {
		decline = fromStart
	}
	return decline
}

func dayOverDay(series *marketdata.PriceSeries) float64 {
	n := len(series.Candles)
	if n < 2 {
		return 0
	}
	prev := series.Candles[n-2].Close
	if prev == 0 {
		return 0
	}
	return (series.Candles[n-1].Close - prev) / prev * 100
}
