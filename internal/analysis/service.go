package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dipscan/internal/cache"
	"github.com/aristath/dipscan/internal/formulas"
	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/pkg/logger"
)

// DefaultLookback covers the rolling windows the snapshot needs (5/10/30
// day) with room for RSI warmup. The 200-day MA is reported only when the
// caller requests a longer lookback.
const DefaultLookback = 90 * 24 * time.Hour

const oversoldScanCap = 10

// Service computes instrument snapshots, memory-cached per symbol so
// repeated checks within the TTL cost nothing.
type Service struct {
	resolver   *marketdata.Resolver
	volatility *VolatilityService
	snapshots  *cache.Memory[*Snapshot]
	log        zerolog.Logger
}

// NewService creates the analysis service.
func NewService(resolver *marketdata.Resolver, volatility *VolatilityService, snapshotTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		resolver:   resolver,
		volatility: volatility,
		snapshots:  cache.NewMemory[*Snapshot](snapshotTTL),
		log:        logger.Component(log, "analysis"),
	}
}

// Analyze builds the indicator snapshot for a symbol. Thin histories leave
// individual indicator fields nil; only an exhausted provider chain returns
// an error.
func (s *Service) Analyze(ctx context.Context, symbol string) (*Snapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	if snap, ok := s.snapshots.Get(symbol); ok {
		return snap, nil
	}

	series, err := s.resolver.Fetch(ctx, marketdata.Request{
		Symbol:   symbol,
		Lookback: DefaultLookback,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", symbol, err)
	}

	snap := s.buildSnapshot(ctx, series)
	s.snapshots.Set(symbol, snap)
	return snap, nil
}

// buildSnapshot derives every indicator field from the fetched series.
func (s *Service) buildSnapshot(ctx context.Context, series *marketdata.PriceSeries) *Snapshot {
	closes := series.Closes()
	lows := series.Lows()
	volumes := series.Volumes()
	last := series.Last()

	snap := &Snapshot{
		Symbol:       series.Symbol,
		CurrentPrice: last.Close,
		AsOf:         last.Date,
	}
	if len(closes) >= 2 {
		snap.PreviousClose = closes[len(closes)-2]
	}

	snap.RSI = formulas.RSI(closes, formulas.DefaultRSIWindow)
	snap.Drop5D = formulas.RollingDrawdown(closes, 5)
	snap.Drop10D = formulas.RollingDrawdown(closes, 10)
	snap.MaxDayDrop30D = formulas.MaxSingleDayDrop(closes, 30)
	snap.DistanceFromLow = formulas.DistanceFromLow(lows, last.Close, 10)
	snap.DaysOversold = formulas.DaysOversold(closes, formulas.DefaultRSIWindow, oversoldScanCap)

	snap.MA200 = formulas.SMA(closes, 200)
	if snap.MA200 != nil && *snap.MA200 != 0 {
		pv := (last.Close - *snap.MA200) / *snap.MA200 * 100
		snap.PriceVsMA200 = &pv
	}

	snap.AvgVolume = avgVolume(volumes, 30)
	snap.Volatility = s.volatility.Reading(ctx)

	return snap
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
