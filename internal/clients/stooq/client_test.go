package stooq

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/pkg/httputil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hc := httputil.New(5*time.Second, zerolog.Nop()).DisableRetry()
	return NewClient(hc, zerolog.Nop()).WithBaseURL(srv.URL)
}

func TestStooqSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AAPL", "aapl.us"},
		{"msft", "msft.us"},
		{"BRK-B", "brk-b.us"},
		{"BAS.DE", "bas.de"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StooqSymbol(tt.in))
	}
}

func TestSupports_RejectsIndexSymbols(t *testing.T) {
	c := NewClient(nil, zerolog.Nop())
	assert.True(t, c.Supports("AAPL"))
	assert.False(t, c.Supports("^VIX"))
	assert.False(t, c.Supports(""))
}

func TestFetchDaily_UnsupportedSymbolShortCircuits(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.FetchDaily(context.Background(), "^VIX", 90*24*time.Hour, false)
	assert.ErrorIs(t, err, marketdata.ErrUnsupportedSymbol)
	assert.False(t, called, "no network call should be made for index symbols")
}

func TestFetchDaily_ParsesCSV(t *testing.T) {
	today := time.Now().UTC()
	d1 := today.AddDate(0, 0, -2).Format("2006-01-02")
	d2 := today.AddDate(0, 0, -1).Format("2006-01-02")
	body := fmt.Sprintf("Date,Open,High,Low,Close,Volume\n%s,100,102,99,101,5000\n%s,101,103,100,102.5,6000\n", d1, d2)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aapl.us", r.URL.Query().Get("s"))
		assert.Equal(t, "d", r.URL.Query().Get("i"))
		fmt.Fprint(w, body)
	})

	series, err := c.FetchDaily(context.Background(), "AAPL", 30*24*time.Hour, false)
	require.NoError(t, err)

	require.Len(t, series.Candles, 2)
	assert.Equal(t, 102.5, series.Last().Close)
	assert.Equal(t, int64(6000), series.Last().Volume)
}

func TestFetchDaily_TrimsToLookback(t *testing.T) {
	today := time.Now().UTC()
	var sb strings.Builder
	sb.WriteString("Date,Open,High,Low,Close,Volume\n")
	for i := 200; i >= 1; i-- {
		d := today.AddDate(0, 0, -i).Format("2006-01-02")
		fmt.Fprintf(&sb, "%s,100,101,99,100,1000\n", d)
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sb.String())
	})

	series, err := c.FetchDaily(context.Background(), "AAPL", 30*24*time.Hour, false)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(series.Candles), 31)
	assert.Greater(t, len(series.Candles), 20)
}

func TestFetchDaily_NoDataBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "No data\n")
	})

	_, err := c.FetchDaily(context.Background(), "ZZZZ", 90*24*time.Hour, false)
	assert.ErrorIs(t, err, marketdata.ErrDataUnavailable)
}
