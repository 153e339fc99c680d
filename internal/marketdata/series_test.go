package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_SortsAscending(t *testing.T) {
	s := &PriceSeries{
		Symbol: "AAPL",
		Candles: []Candle{
			{Date: day(3), Close: 3},
			{Date: day(1), Close: 1},
			{Date: day(2), Close: 2},
		},
	}
	s.Normalize()

	require.Len(t, s.Candles, 3)
	for i := 1; i < len(s.Candles); i++ {
		assert.True(t, s.Candles[i-1].Date.Before(s.Candles[i].Date))
	}
}

func TestNormalize_DeduplicatesKeepingLast(t *testing.T) {
	s := &PriceSeries{
		Candles: []Candle{
			{Date: day(1), Close: 1},
			{Date: day(2), Close: 2},
			{Date: day(2), Close: 2.5},
		},
	}
	s.Normalize()

	require.Len(t, s.Candles, 2)
	assert.Equal(t, 2.5, s.Candles[1].Close)
}

func TestColumns(t *testing.T) {
	s := &PriceSeries{
		Candles: []Candle{
			{Date: day(1), Low: 9, Close: 10, Volume: 100},
			{Date: day(2), Low: 10, Close: 11, Volume: 200},
		},
	}

	assert.Equal(t, []float64{10, 11}, s.Closes())
	assert.Equal(t, []float64{9, 10}, s.Lows())
	assert.Equal(t, []int64{100, 200}, s.Volumes())
}

func TestLast(t *testing.T) {
	empty := &PriceSeries{}
	assert.Nil(t, empty.Last())

	s := &PriceSeries{Candles: []Candle{{Date: day(1), Close: 5}, {Date: day(2), Close: 7}}}
	require.NotNil(t, s.Last())
	assert.Equal(t, 7.0, s.Last().Close)
}

func TestSince(t *testing.T) {
	s := &PriceSeries{Candles: []Candle{
		{Date: day(1)}, {Date: day(2)}, {Date: day(3)}, {Date: day(4)},
	}}

	assert.Len(t, s.Since(day(3)), 2)
	assert.Len(t, s.Since(day(10)), 0)
	assert.Len(t, s.Since(day(1)), 4)
}
