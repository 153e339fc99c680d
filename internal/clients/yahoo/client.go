// Package yahoo implements the primary quote provider against the Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/pkg/httputil"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Browser-like headers; the chart API rejects default Go user agents.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client fetches daily price history from the Yahoo Finance chart API.
type Client struct {
	http    *httputil.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(http *httputil.Client, log zerolog.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: defaultBaseURL,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Name identifies this provider in resolver logs.
func (c *Client) Name() string { return "yahoo" }

// Supports reports whether this provider can serve the symbol. Yahoo serves
// equities and index symbols alike.
func (c *Client) Supports(symbol string) bool { return symbol != "" }

// FetchDaily fetches daily candles for the given lookback window.
// Extended-hours candles are included when extendedHours is set; the original
// screener asks for them so "today" screens see pre-market moves.
func (c *Client) FetchDaily(ctx context.Context, symbol string, lookback time.Duration, extendedHours bool) (*marketdata.PriceSeries, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", rangeParam(lookback))
	if extendedHours {
		params.Add("includePrePost", "true")
	}

	reqURL := c.baseURL + "/v8/finance/chart/" + url.QueryEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("yahoo rate limit hit for %s: %w", symbol, marketdata.ErrThrottled)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API error for %s: %v: %w", symbol, result.Chart.Error, marketdata.ErrDataUnavailable)
	}
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s: %w", symbol, marketdata.ErrDataUnavailable)
	}

	chart := result.Chart.Result[0]
	quote := chart.Indicators.Quote[0]

	series := &marketdata.PriceSeries{Symbol: symbol}
	for i, ts := range chart.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}
		// Yahoo pads holidays and halted sessions with zero rows.
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}

		series.Candles = append(series.Candles, marketdata.Candle{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: volume,
		})
	}

	if len(series.Candles) == 0 {
		return nil, fmt.Errorf("empty history for %s: %w", symbol, marketdata.ErrDataUnavailable)
	}

	series.Normalize()

	c.log.Debug().
		Str("symbol", symbol).
		Int("count", len(series.Candles)).
		Msg("Fetched daily history")

	return series, nil
}

// LatestClose fetches the most recent daily close for a symbol. Used for the
// volatility index reading.
func (c *Client) LatestClose(ctx context.Context, symbol string) (float64, error) {
	series, err := c.FetchDaily(ctx, symbol, 5*24*time.Hour, false)
	if err != nil {
		return 0, err
	}
	return series.Last().Close, nil
}

// rangeParam maps a lookback duration onto the chart API's range values.
func rangeParam(lookback time.Duration) string {
	days := int(lookback.Hours() / 24)
	switch {
	case days <= 1:
		return "1d"
	case days <= 5:
		return "5d"
	case days <= 31:
		return "1mo"
	case days <= 93:
		return "3mo"
	case days <= 186:
		return "6mo"
	case days <= 366:
		return "1y"
	default:
		return "2y"
	}
}
