// Package stooq implements the fallback quote provider against Stooq's
// daily CSV download endpoint.
package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/pkg/httputil"
)

const defaultBaseURL = "https://stooq.com"

// Client fetches daily price history from Stooq. Stooq serves US equities
// under a lowercase ".us" suffix and has no meaningful rate limit, which
// makes it a good fallback when the primary provider throttles.
type Client struct {
	http    *httputil.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Stooq client.
func NewClient(http *httputil.Client, log zerolog.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: defaultBaseURL,
		log:     log.With().Str("client", "stooq").Logger(),
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Name identifies this provider in resolver logs.
func (c *Client) Name() string { return "stooq" }

// Supports reports whether Stooq can serve the symbol. Index symbols have no
// Stooq equivalent in the form the screener uses, so they are rejected
// before any network call.
func (c *Client) Supports(symbol string) bool {
	return symbol != "" && !strings.HasPrefix(symbol, "^")
}

// StooqSymbol maps a plain US ticker to Stooq's naming convention.
// AAPL -> aapl.us; symbols already carrying an exchange suffix pass through
// lowercased.
func StooqSymbol(symbol string) string {
	s := strings.ToLower(symbol)
	if !strings.Contains(s, ".") {
		s += ".us"
	}
	return s
}

// FetchDaily fetches daily candles for the given lookback window. Stooq's
// download endpoint returns full history; the result is trimmed client-side.
// The extendedHours flag is accepted for interface parity and ignored, the
// CSV feed only carries regular-session bars.
func (c *Client) FetchDaily(ctx context.Context, symbol string, lookback time.Duration, _ bool) (*marketdata.PriceSeries, error) {
	if !c.Supports(symbol) {
		return nil, fmt.Errorf("stooq cannot serve %q: %w", symbol, marketdata.ErrUnsupportedSymbol)
	}

	params := url.Values{}
	params.Add("s", StooqSymbol(symbol))
	params.Add("i", "d")

	reqURL := c.baseURL + "/q/d/l/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq returned status %d for %s", resp.StatusCode, symbol)
	}

	series, err := parseDailyCSV(symbol, resp.Body)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-lookback)
	series.Candles = series.Since(cutoff)
	if len(series.Candles) == 0 {
		return nil, fmt.Errorf("no candles within lookback for %s: %w", symbol, marketdata.ErrDataUnavailable)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("count", len(series.Candles)).
		Msg("Fetched daily history")

	return series, nil
}

// parseDailyCSV decodes Stooq's "Date,Open,High,Low,Close,Volume" layout.
// Stooq answers unknown symbols with a one-line "No data" body, which comes
// out of here as ErrDataUnavailable.
func parseDailyCSV(symbol string, r io.Reader) (*marketdata.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV for %s: %w", symbol, err)
	}

	series := &marketdata.PriceSeries{Symbol: symbol}
	for i, rec := range records {
		if i == 0 || len(rec) < 5 {
			continue
		}

		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}

		open, err1 := strconv.ParseFloat(rec[1], 64)
		high, err2 := strconv.ParseFloat(rec[2], 64)
		low, err3 := strconv.ParseFloat(rec[3], 64)
		closePx, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		volume := int64(0)
		if len(rec) > 5 {
			volume, _ = strconv.ParseInt(rec[5], 10, 64)
		}

		series.Candles = append(series.Candles, marketdata.Candle{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: volume,
		})
	}

	if len(series.Candles) == 0 {
		return nil, fmt.Errorf("no usable rows for %s: %w", symbol, marketdata.ErrDataUnavailable)
	}

	series.Normalize()
	return series, nil
}
