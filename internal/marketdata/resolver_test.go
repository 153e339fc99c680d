package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/dipscan/internal/ratelimit"
)

type fakeProvider struct {
	name     string
	supports bool
	series   *PriceSeries
	err      error
	calls    int
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) Supports(string) bool { return f.supports }
func (f *fakeProvider) FetchDaily(_ context.Context, symbol string, _ time.Duration, _ bool) (*PriceSeries, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func someSeries(symbol string) *PriceSeries {
	return &PriceSeries{
		Symbol: symbol,
		Candles: []Candle{
			{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Close: 100},
		},
	}
}

func newResolver(p, s Provider, mode Mode) *Resolver {
	return NewResolver(p, s, ratelimit.NewGate(time.Millisecond), mode, zerolog.Nop())
}

func TestFetch_PrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, series: someSeries("AAPL")}
	secondary := &fakeProvider{name: "b", supports: true, series: someSeries("AAPL")}

	series, err := newResolver(primary, secondary, ModeAuto).Fetch(context.Background(), Request{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestFetch_FallsBackOnThrottle(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, err: ErrThrottled}
	secondary := &fakeProvider{name: "b", supports: true, series: someSeries("AAPL")}

	series, err := newResolver(primary, secondary, ModeAuto).Fetch(context.Background(), Request{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.NotNil(t, series)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFetch_SkipsUnsupportedSecondary(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, err: errors.New("boom")}
	secondary := &fakeProvider{name: "b", supports: false}

	_, err := newResolver(primary, secondary, ModeAuto).Fetch(context.Background(), Request{Symbol: "^VIX"})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, 0, secondary.calls)
}

func TestFetch_UnsupportedEverywhereKeepsSentinel(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: false}
	secondary := &fakeProvider{name: "b", supports: false}

	_, err := newResolver(primary, secondary, ModeAuto).Fetch(context.Background(), Request{Symbol: "^VIX"})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, ErrUnsupportedSymbol, "callers distinguish bad symbols from missing data")
}

func TestFetch_ExhaustedChainIsUnavailable(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, err: errors.New("500")}
	secondary := &fakeProvider{name: "b", supports: true, err: errors.New("no data")}

	_, err := newResolver(primary, secondary, ModeAuto).Fetch(context.Background(), Request{Symbol: "AAPL"})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestFetch_PrimaryOnlyModeNeverFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, err: ErrThrottled}
	secondary := &fakeProvider{name: "b", supports: true, series: someSeries("AAPL")}

	_, err := newResolver(primary, secondary, ModePrimary).Fetch(context.Background(), Request{Symbol: "AAPL"})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, 0, secondary.calls)
}

func TestFetch_SecondaryOnlyMode(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, series: someSeries("AAPL")}
	secondary := &fakeProvider{name: "b", supports: true, series: someSeries("AAPL")}

	_, err := newResolver(primary, secondary, ModeSecondary).Fetch(context.Background(), Request{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFetch_RequestModeOverridesDefault(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, series: someSeries("AAPL")}
	secondary := &fakeProvider{name: "b", supports: true, series: someSeries("AAPL")}

	_, err := newResolver(primary, secondary, ModeAuto).Fetch(context.Background(), Request{Symbol: "AAPL", Mode: ModeSecondary})
	require.NoError(t, err)
	assert.Equal(t, 0, primary.calls)
}

func TestFetch_ContextCancellationStopsChain(t *testing.T) {
	primary := &fakeProvider{name: "a", supports: true, err: context.Canceled}
	secondary := &fakeProvider{name: "b", supports: true, series: someSeries("AAPL")}

	_, err := newResolver(primary, secondary, ModeAuto).Fetch(context.Background(), Request{Symbol: "AAPL"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, secondary.calls)
}
