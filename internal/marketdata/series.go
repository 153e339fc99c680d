// Package marketdata defines the price history model shared by provider
// clients and the resolver that arbitrates between them.
package marketdata

import (
	"sort"
	"time"
)

// Candle is one daily bar of an instrument's price history.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an instrument's ordered daily history. Candles are strictly
// ascending by date with no duplicates after Normalize.
type PriceSeries struct {
	Symbol  string   `json:"symbol"`
	Candles []Candle `json:"candles"`
}

// Normalize sorts candles ascending by date and collapses duplicate dates,
// keeping the last occurrence. Providers return histories in whatever order
// suits them; everything downstream assumes this canonical form.
func (s *PriceSeries) Normalize() {
	if len(s.Candles) < 2 {
		return
	}

	sort.SliceStable(s.Candles, func(i, j int) bool {
		return s.Candles[i].Date.Before(s.Candles[j].Date)
	})

	out := s.Candles[:0]
	for _, c := range s.Candles {
		if len(out) > 0 && out[len(out)-1].Date.Equal(c.Date) {
			out[len(out)-1] = c
			continue
		}
		out = append(out, c)
	}
	s.Candles = out
}

// Closes returns the close column in date order.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Lows returns the low column in date order.
func (s *PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes returns the volume column in date order.
func (s *PriceSeries) Volumes() []int64 {
	out := make([]int64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// Last returns the most recent candle, or nil for an empty series.
func (s *PriceSeries) Last() *Candle {
	if len(s.Candles) == 0 {
		return nil
	}
	return &s.Candles[len(s.Candles)-1]
}

// Since returns the suffix of the series with dates on or after t.
func (s *PriceSeries) Since(t time.Time) []Candle {
	idx := sort.Search(len(s.Candles), func(i int) bool {
		return !s.Candles[i].Date.Before(t)
	})
	return s.Candles[idx:]
}
