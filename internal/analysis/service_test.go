package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/internal/ratelimit"
)

type seriesProvider struct {
	series map[string]*marketdata.PriceSeries
	calls  int
}

func (p *seriesProvider) Name() string         { return "fake" }
func (p *seriesProvider) Supports(string) bool { return true }
func (p *seriesProvider) FetchDaily(_ context.Context, symbol string, _ time.Duration, _ bool) (*marketdata.PriceSeries, error) {
	p.calls++
	if s, ok := p.series[symbol]; ok {
		return s, nil
	}
	return nil, marketdata.ErrDataUnavailable
}

type fixedIndex struct {
	value float64
	err   error
}

func (f *fixedIndex) LatestClose(context.Context, string) (float64, error) {
	return f.value, f.err
}

func declineSeries(symbol string, n int) *marketdata.PriceSeries {
	s := &marketdata.PriceSeries{Symbol: symbol}
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	price := 200.0
	for i := 0; i < n; i++ {
		price -= 1.5
		s.Candles = append(s.Candles, marketdata.Candle{
			Date:   start.AddDate(0, 0, i),
			Open:   price + 1,
			High:   price + 2,
			Low:    price - 1,
			Close:  price,
			Volume: 1_000_000,
		})
	}
	return s
}

func newTestService(p marketdata.Provider, vixValue float64) *Service {
	resolver := marketdata.NewResolver(p, nil, ratelimit.NewGate(time.Millisecond), marketdata.ModePrimary, zerolog.Nop())
	vix := NewVolatilityService(&fixedIndex{value: vixValue}, time.Minute, zerolog.Nop())
	return NewService(resolver, vix, time.Minute, zerolog.Nop())
}

func TestAnalyze_FullSnapshot(t *testing.T) {
	p := &seriesProvider{series: map[string]*marketdata.PriceSeries{
		"AAPL": declineSeries("AAPL", 60),
	}}
	svc := newTestService(p, 22.5)

	snap, err := svc.Analyze(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Greater(t, snap.PreviousClose, snap.CurrentPrice, "declining series")
	require.NotNil(t, snap.RSI)
	assert.Less(t, *snap.RSI, 30.0, "steady decline is oversold")
	require.NotNil(t, snap.Drop5D)
	assert.Less(t, *snap.Drop5D, 0.0)
	require.NotNil(t, snap.Drop10D)
	require.NotNil(t, snap.MaxDayDrop30D)
	require.NotNil(t, snap.DistanceFromLow)
	assert.Equal(t, 10, snap.DaysOversold)
	assert.Equal(t, int64(1_000_000), snap.AvgVolume)
	assert.Equal(t, 22.5, snap.Volatility.Value)
	assert.False(t, snap.Volatility.Estimated)

	assert.Nil(t, snap.MA200, "only 60 observations")
	assert.Nil(t, snap.PriceVsMA200)
}

func TestAnalyze_CachesBySymbol(t *testing.T) {
	p := &seriesProvider{series: map[string]*marketdata.PriceSeries{
		"AAPL": declineSeries("AAPL", 60),
	}}
	svc := newTestService(p, 20)

	_, err := svc.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls, "second call must hit the snapshot cache")
}

func TestAnalyze_ShortHistoryLeavesIndicatorsNil(t *testing.T) {
	p := &seriesProvider{series: map[string]*marketdata.PriceSeries{
		"NEW": declineSeries("NEW", 5),
	}}
	svc := newTestService(p, 20)

	snap, err := svc.Analyze(context.Background(), "NEW")
	require.NoError(t, err)

	assert.Nil(t, snap.RSI, "5 closes cannot produce a 14-period RSI")
	assert.NotNil(t, snap.Drop5D)
	assert.Equal(t, 0, snap.DaysOversold)
}

func TestAnalyze_UnavailableSymbolErrors(t *testing.T) {
	svc := newTestService(&seriesProvider{}, 20)

	_, err := svc.Analyze(context.Background(), "GONE")
	assert.ErrorIs(t, err, marketdata.ErrDataUnavailable)
}

func TestAnalyze_EmptySymbol(t *testing.T) {
	svc := newTestService(&seriesProvider{}, 20)

	_, err := svc.Analyze(context.Background(), "   ")
	assert.Error(t, err)
}

func TestVolatility_SyntheticFallback(t *testing.T) {
	vix := NewVolatilityService(&fixedIndex{err: errors.New("down")}, time.Minute, zerolog.Nop())

	r1 := vix.Reading(context.Background())
	assert.True(t, r1.Estimated)
	assert.GreaterOrEqual(t, r1.Value, 15.0)
	assert.Less(t, r1.Value, 25.0)

	// Deterministic within a day, and cached besides.
	r2 := vix.Reading(context.Background())
	assert.Equal(t, r1, r2)
}

func TestVolatility_CachesReading(t *testing.T) {
	src := &countingIndex{value: 19}
	vix := NewVolatilityService(src, time.Minute, zerolog.Nop())

	_ = vix.Reading(context.Background())
	_ = vix.Reading(context.Background())

	assert.Equal(t, 1, src.calls)
}

type countingIndex struct {
	value float64
	calls int
}

func (c *countingIndex) LatestClose(context.Context, string) (float64, error) {
	c.calls++
	return c.value, nil
}

func TestGatedIndexSource_PaysTheGateInterval(t *testing.T) {
	interval := 30 * time.Millisecond
	src := &countingIndex{value: 19}
	gated := NewGatedIndexSource(ratelimit.NewGate(interval), src)

	start := time.Now()
	_, err := gated.LatestClose(context.Background(), "^VIX")
	require.NoError(t, err)
	_, err = gated.LatestClose(context.Background(), "^VIX")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), interval, "second call waits out the interval")
	assert.Equal(t, 2, src.calls)
}

func TestGatedIndexSource_ContextCancellation(t *testing.T) {
	gated := NewGatedIndexSource(ratelimit.NewGate(time.Minute), &countingIndex{value: 19})

	_, err := gated.LatestClose(context.Background(), "^VIX")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = gated.LatestClose(ctx, "^VIX")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGatedIndexSource_NilGatePassesThrough(t *testing.T) {
	src := &countingIndex{value: 19}
	gated := NewGatedIndexSource(nil, src)

	v, err := gated.LatestClose(context.Background(), "^VIX")
	require.NoError(t, err)
	assert.Equal(t, 19.0, v)
}
