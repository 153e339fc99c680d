package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
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

func chartJSON(timestamps []int64, closes []float64) string {
	ts := ""
	oh := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
			oh += ","
		}
		ts += fmt.Sprintf("%d", t)
		oh += fmt.Sprintf("%g", closes[i])
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":"AAPL"},"timestamp":[%s],"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}}],"error":null}}`,
		ts, oh, oh, oh, oh, ts)
}

func TestFetchDaily_ParsesCandles(t *testing.T) {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	timestamps := []int64{base.Unix(), base.AddDate(0, 0, 1).Unix(), base.AddDate(0, 0, 2).Unix()}
	closes := []float64{100, 101.5, 99.25}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "3mo", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartJSON(timestamps, closes))
	})

	series, err := c.FetchDaily(context.Background(), "AAPL", 90*24*time.Hour, false)
	require.NoError(t, err)

	require.Len(t, series.Candles, 3)
	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, 99.25, series.Candles[2].Close)
	assert.True(t, series.Candles[0].Date.Before(series.Candles[1].Date))
}

func TestFetchDaily_ExtendedHoursParam(t *testing.T) {
	var gotPrePost string
	base := time.Now().Unix()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrePost = r.URL.Query().Get("includePrePost")
		fmt.Fprint(w, chartJSON([]int64{base}, []float64{50}))
	})

	_, err := c.FetchDaily(context.Background(), "MSFT", 24*time.Hour, true)
	require.NoError(t, err)
	assert.Equal(t, "true", gotPrePost)
}

func TestFetchDaily_ThrottledOn429(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FetchDaily(context.Background(), "AAPL", 90*24*time.Hour, false)
	assert.ErrorIs(t, err, marketdata.ErrThrottled)
}

func TestFetchDaily_EmptyResultIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	})

	_, err := c.FetchDaily(context.Background(), "NOPE", 90*24*time.Hour, false)
	assert.ErrorIs(t, err, marketdata.ErrDataUnavailable)
}

func TestFetchDaily_SkipsZeroPaddedRows(t *testing.T) {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%d,%d],"indicators":{"quote":[{"open":[100,0],"high":[101,0],"low":[99,0],"close":[100.5,0],"volume":[1000,0]}]}}],"error":null}}`,
		base.Unix(), base.AddDate(0, 0, 1).Unix())

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})

	series, err := c.FetchDaily(context.Background(), "AAPL", 90*24*time.Hour, false)
	require.NoError(t, err)
	assert.Len(t, series.Candles, 1)
}

func TestLatestClose(t *testing.T) {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	timestamps := []int64{base.Unix(), base.AddDate(0, 0, 1).Unix()}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(timestamps, []float64{17.2, 18.9}))
	})

	v, err := c.LatestClose(context.Background(), "^VIX")
	require.NoError(t, err)
	assert.Equal(t, 18.9, v)
}

func TestRangeParam(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "1d"},
		{5, "5d"},
		{30, "1mo"},
		{90, "3mo"},
		{180, "6mo"},
		{365, "1y"},
		{730, "2y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rangeParam(time.Duration(tt.days)*24*time.Hour), "days=%d", tt.days)
	}
}
