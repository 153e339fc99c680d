package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dipscan/internal/ratelimit"
	"github.com/aristath/dipscan/pkg/logger"
)

// Mode selects which providers the resolver may use.
type Mode string

const (
	ModeAuto      Mode = "auto"      // primary first, fall back to secondary
	ModePrimary   Mode = "primary"   // primary only
	ModeSecondary Mode = "secondary" // secondary only
)

// Provider is a source of daily price history.
type Provider interface {
	Name() string
	Supports(symbol string) bool
	FetchDaily(ctx context.Context, symbol string, lookback time.Duration, extendedHours bool) (*PriceSeries, error)
}

// Request describes one history fetch.
type Request struct {
	Symbol        string
	Lookback      time.Duration
	ExtendedHours bool
	Mode          Mode // empty means the resolver's default mode
	Ungated       bool // skip the primary-provider gate; callers pace themselves
}

// Resolver walks an ordered provider chain until one produces usable
// history. Calls to the primary provider pass through the shared rate gate;
// the secondary has no meaningful limit and is called directly.
type Resolver struct {
	primary     Provider
	secondary   Provider
	gate        *ratelimit.Gate
	defaultMode Mode
	log         zerolog.Logger
}

// NewResolver creates a resolver over the two providers.
func NewResolver(primary, secondary Provider, gate *ratelimit.Gate, defaultMode Mode, log zerolog.Logger) *Resolver {
	return &Resolver{
		primary:     primary,
		secondary:   secondary,
		gate:        gate,
		defaultMode: defaultMode,
		log:         logger.Component(log, "resolver"),
	}
}

// Gate exposes the shared rate gate so callers pacing their own loops can
// reuse the same budget.
func (r *Resolver) Gate() *ratelimit.Gate {
	return r.gate
}

// Fetch resolves daily history for the request. Providers are tried in
// order; a provider failure moves to the next in the chain, and only an
// exhausted chain surfaces ErrDataUnavailable. Context cancellation stops
// the chain immediately.
func (r *Resolver) Fetch(ctx context.Context, req Request) (*PriceSeries, error) {
	mode := req.Mode
	if mode == "" {
		mode = r.defaultMode
	}

	var chain []Provider
	switch mode {
	case ModePrimary:
		chain = []Provider{r.primary}
	case ModeSecondary:
		chain = []Provider{r.secondary}
	default:
		chain = []Provider{r.primary, r.secondary}
	}

	lookback := req.Lookback
	if lookback <= 0 {
		lookback = 90 * 24 * time.Hour
	}

	var lastErr error
	for _, p := range chain {
		if p == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if !p.Supports(req.Symbol) {
			r.log.Debug().
				Str("provider", p.Name()).
				Str("symbol", req.Symbol).
				Msg("Provider skipped, symbol not supported")
			lastErr = ErrUnsupportedSymbol
			continue
		}

		if p == r.primary && r.gate != nil && !req.Ungated {
			if err := r.gate.Wait(ctx); err != nil {
				return nil, err
			}
		}

		series, err := p.FetchDaily(ctx, req.Symbol, lookback, req.ExtendedHours)
		if err == nil {
			return series, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		r.log.Warn().
			Err(err).
			Str("provider", p.Name()).
			Str("symbol", req.Symbol).
			Msg("Provider failed, trying next")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrDataUnavailable
	}
	if !errors.Is(lastErr, ErrDataUnavailable) {
		lastErr = fmt.Errorf("%w: %s: %w", ErrDataUnavailable, req.Symbol, lastErr)
	}
	return nil, lastErr
}
