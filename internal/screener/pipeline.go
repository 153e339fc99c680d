package screener

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/dipscan/internal/cache"
	"github.com/aristath/dipscan/internal/formulas"
	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/pkg/logger"
)

// Default filter values, applied when the caller leaves a field zero.
const (
	DefaultMaxRSI     = 40.0
	DefaultMinDecline = 3.0
	DefaultMaxResults = 20
)

// Filters narrow a screening run.
type Filters struct {
	Period       Period  `json:"period"`
	MaxRSI       float64 `json:"max_rsi"`     // reject instruments above this RSI
	MinDecline   float64 `json:"min_decline"` // required decline magnitude, percent
	MinVolume    int64   `json:"min_volume"`  // reject thin instruments
	MaxResults   int     `json:"max_results"` // stop collecting once reached
	ForceRefresh bool    `json:"force_refresh"`
}

func (f Filters) withDefaults() Filters {
	if f.Period == "" {
		f.Period = Period1W
	}
	if f.MaxRSI <= 0 {
		f.MaxRSI = DefaultMaxRSI
	}
	if f.MinDecline <= 0 {
		f.MinDecline = DefaultMinDecline
	}
	if f.MaxResults <= 0 {
		f.MaxResults = DefaultMaxResults
	}
	return f
}

// cacheKey folds the full logical parameter set plus the calendar date, so
// yesterday's screen can never answer today's request.
func (f Filters) cacheKey(day string) string {
	return cache.Key(
		"screen",
		string(f.Period),
		fmt.Sprintf("%.2f", f.MaxRSI),
		fmt.Sprintf("%.2f", f.MinDecline),
		fmt.Sprintf("%d", f.MinVolume),
		fmt.Sprintf("%d", f.MaxResults),
		day,
	)
}

// Candidate is one instrument that passed every filter.
type Candidate struct {
	Symbol     string   `json:"symbol" msgpack:"symbol"`
	Price      float64  `json:"price" msgpack:"price"`
	DeclinePct float64  `json:"decline_pct" msgpack:"decline_pct"`
	RSI        *float64 `json:"rsi" msgpack:"rsi"`
	AvgVolume  int64    `json:"avg_volume" msgpack:"avg_volume"`
}

// Batch is the result of one screening run.
type Batch struct {
	RunID       string      `json:"run_id" msgpack:"run_id"`
	Period      Period      `json:"period" msgpack:"period"`
	GeneratedAt time.Time   `json:"generated_at" msgpack:"generated_at"`
	Results     []Candidate `json:"results" msgpack:"results"`
	Checked     int         `json:"checked" msgpack:"checked"`
	Found       int         `json:"found" msgpack:"found"`
	Failed      int         `json:"failed" msgpack:"failed"`
	ElapsedSec  float64     `json:"elapsed_sec" msgpack:"elapsed_sec"`
	CallsPerMin float64     `json:"calls_per_min" msgpack:"calls_per_min"`
	FromCache   bool        `json:"from_cache" msgpack:"-"`
}

// Config carries the screener's pacing and cache knobs.
type Config struct {
	ScreenTTL     time.Duration
	StreamDelay   time.Duration
	StreamUseGate bool
	MaxPerScreen  int
}

// Screener applies the dip filters across the universe.
type Screener struct {
	universe *Universe
	resolver *marketdata.Resolver
	store    *cache.Store
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

// New creates a screener.
func New(universe *Universe, resolver *marketdata.Resolver, store *cache.Store, cfg Config, log zerolog.Logger) *Screener {
	if cfg.ScreenTTL <= 0 {
		cfg.ScreenTTL = time.Hour
	}
	if cfg.StreamDelay <= 0 {
		cfg.StreamDelay = 100 * time.Millisecond
	}
	return &Screener{
		universe: universe,
		resolver: resolver,
		store:    store,
		cfg:      cfg,
		log:      logger.Component(log, "screener"),
		now:      time.Now,
	}
}

// Screen runs a full batch scan. Results are cached for the screen TTL;
// ForceRefresh bypasses the cache read but still refreshes the entry.
func (s *Screener) Screen(ctx context.Context, f Filters) (*Batch, error) {
	f = f.withDefaults()

	key := f.cacheKey(s.now().UTC().Format("2006-01-02"))
	if !f.ForceRefresh && s.store != nil {
		var cached Batch
		if s.store.GetIfFresh(key, &cached) {
			cached.FromCache = true
			s.log.Debug().Str("run_id", cached.RunID).Msg("Screen served from cache")
			return &cached, nil
		}
	}

	symbols := s.universe.Symbols()
	batch, err := s.scan(ctx, symbols, f, nil)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		s.store.Put(key, batch, s.cfg.ScreenTTL)
	}
	return batch, nil
}

// QuickScreen scans the curated high-liquidity subset with relaxed
// thresholds. No caching, it is cheap by construction.
func (s *Screener) QuickScreen(ctx context.Context) (*Batch, error) {
	return s.scan(ctx, quickUniverse, Filters{
		Period:     Period1W,
		MaxRSI:     45,
		MinDecline: 2,
		MaxResults: 10,
	}, nil)
}

// scan is the shared pipeline behind batch and streaming screens. onResult
// is invoked per passing candidate when non-nil.
func (s *Screener) scan(ctx context.Context, symbols []string, f Filters, onResult func(Candidate, int)) (*Batch, error) {
	start := s.now()

	if s.cfg.MaxPerScreen > 0 && len(symbols) > s.cfg.MaxPerScreen {
		symbols = symbols[:s.cfg.MaxPerScreen]
	}

	batch := &Batch{
		RunID:       uuid.NewString(),
		Period:      f.Period,
		GeneratedAt: start.UTC(),
	}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(batch.Results) >= f.MaxResults {
			break
		}

		batch.Checked++
		candidate, err := s.examine(ctx, symbol, f, false)
		if err != nil {
			batch.Failed++
			s.log.Debug().Err(err).Str("symbol", symbol).Msg("Skipping symbol")
			// Failure paths pay the same pacing delay as successful calls,
			// otherwise a run of bad symbols would hammer the provider.
			if err := s.failureDelay(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if candidate == nil {
			continue
		}

		batch.Results = append(batch.Results, *candidate)
		if onResult != nil {
			onResult(*candidate, batch.Checked)
		}
	}

	// Largest decline first.
	sort.Slice(batch.Results, func(i, j int) bool {
		return batch.Results[i].DeclinePct < batch.Results[j].DeclinePct
	})

	batch.Found = len(batch.Results)
	elapsed := s.now().Sub(start)
	batch.ElapsedSec = elapsed.Seconds()
	if elapsed > 0 {
		batch.CallsPerMin = float64(batch.Checked) / elapsed.Minutes()
	}

	s.log.Info().
		Str("run_id", batch.RunID).
		Str("period", string(f.Period)).
		Int("checked", batch.Checked).
		Int("found", batch.Found).
		Int("failed", batch.Failed).
		Float64("elapsed_sec", batch.ElapsedSec).
		Msg("Screen completed")

	return batch, nil
}

// examine fetches one instrument and applies the filters in order: decline
// first, then RSI, then volume. A nil candidate with nil error means the
// instrument was filtered out.
func (s *Screener) examine(ctx context.Context, symbol string, f Filters, ungated bool) (*Candidate, error) {
	now := s.now()

	series, err := s.resolver.Fetch(ctx, marketdata.Request{
		Symbol:        symbol,
		Lookback:      f.Period.Lookback(now),
		ExtendedHours: f.Period.ExtendedHours(),
		Ungated:       ungated,
	})
	if err != nil {
		return nil, err
	}

	decline := DeclineForPeriod(series, f.Period, now)
	if decline > -f.MinDecline {
		return nil, nil
	}

	closes := series.Closes()
	rsi := formulas.RSI(closes, formulas.DefaultRSIWindow)
	// An unknown RSI cannot disqualify; the filter rejects only measured
	// strength.
	if rsi != nil && *rsi > f.MaxRSI {
		return nil, nil
	}

	avgVol := avgVolume(series.Volumes(), 30)
	if f.MinVolume > 0 && avgVol < f.MinVolume {
		return nil, nil
	}

	return &Candidate{
		Symbol:     series.Symbol,
		Price:      series.Last().Close,
		DeclinePct: decline,
		RSI:        rsi,
		AvgVolume:  avgVol,
	}, nil
}

// failureDelay holds the pace after a failed fetch.
func (s *Screener) failureDelay(ctx context.Context) error {
	interval := s.cfg.StreamDelay
	if gate := s.resolver.Gate(); gate != nil {
		interval = gate.Interval()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(interval):
		return nil
	}
}

func avgVolume(volumes []int64, window int) int64 {
	if len(volumes) == 0 {
		return 0
	}
	if window < len(volumes) {
		volumes = volumes[len(volumes)-window:]
	}
	var sum int64
	for _, v := range volumes {
		sum += v
	}
	return sum / int64(len(volumes))
}
