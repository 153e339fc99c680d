// Package httputil provides the shared HTTP client used by all quote
// provider clients. It adds bounded retries with exponential backoff and an
// optional request-rate ceiling on top of net/http.
package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/dipscan/pkg/logger"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// DefaultRetryConfig is used when no explicit retry configuration is given.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:   3,
	InitialDelay: time.Second,
	MaxDelay:     10 * time.Second,
	Enabled:      true,
}

// Client is an HTTP client wrapper with retry logic, logging and an optional
// polite rate ceiling for providers that do not tolerate bursts.
type Client struct {
	httpClient  *http.Client
	log         zerolog.Logger
	retryConfig RetryConfig
	limiter     *rate.Limiter
}

// New creates a new client with the given timeout.
func New(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		log:         logger.Component(log, "httputil"),
		retryConfig: DefaultRetryConfig,
	}
}

// WithRetry configures retry behavior.
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry.
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// WithRateCeiling caps the outgoing request rate. Callers block in Do until
// a token is available or their context is cancelled.
func (c *Client) WithRateCeiling(interval time.Duration) *Client {
	c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	return c
}

// Do executes the request with the configured retry and rate policies.
// The request must carry a context; cancellation is honored between retries.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate ceiling wait failed: %w", err)
		}
	}

	start := time.Now()

	var resp *http.Response
	var err error
	if c.retryConfig.Enabled {
		resp, err = c.doWithRetry(req)
	} else {
		resp, err = c.httpClient.Do(req)
	}

	if err != nil {
		c.log.Warn().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("HTTP request failed")
		return nil, err
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("HTTP request completed")

	return resp, nil
}

// Get performs a GET request through the retry pipeline.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	return c.Do(req)
}

// doWithRetry executes the request with exponential backoff.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		resp, err = c.httpClient.Do(req)

		if err == nil && !IsRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt == c.retryConfig.MaxRetries {
			break
		}

		// Drain the failed response before retrying so the connection
		// can be reused.
		if err == nil {
			resp.Body.Close()
		}

		c.log.Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Str("url", req.URL.String()).
			Msg("Retrying HTTP request")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}

	return resp, err
}

// IsRetryableStatus reports whether a status code should be retried.
// Retry on 5xx server errors and 429 Too Many Requests.
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
