package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dipscan/internal/cache"
	"github.com/aristath/dipscan/internal/ratelimit"
	"github.com/aristath/dipscan/pkg/logger"
)

const volatilitySymbol = "^VIX"

// IndexSource fetches the latest close of an index symbol.
type IndexSource interface {
	LatestClose(ctx context.Context, symbol string) (float64, error)
}

// GatedIndexSource routes index fetches through the shared rate gate, so the
// volatility lookup pays the same pacing as every other primary-provider
// call.
type GatedIndexSource struct {
	gate   *ratelimit.Gate
	source IndexSource
}

// NewGatedIndexSource wraps source behind gate. A nil gate passes through.
func NewGatedIndexSource(gate *ratelimit.Gate, source IndexSource) *GatedIndexSource {
	return &GatedIndexSource{gate: gate, source: source}
}

// LatestClose waits for the gate, then delegates.
func (g *GatedIndexSource) LatestClose(ctx context.Context, symbol string) (float64, error) {
	if g.gate != nil {
		if err := g.gate.Wait(ctx); err != nil {
			return 0, err
		}
	}
	return g.source.LatestClose(ctx, symbol)
}

// VolatilityService supplies the market volatility reading, cached in
// memory so a full screening run costs at most one index fetch.
type VolatilityService struct {
	source IndexSource
	cache  *cache.Memory[VolatilityReading]
	log    zerolog.Logger
}

// NewVolatilityService creates the service with the given cache TTL.
func NewVolatilityService(source IndexSource, ttl time.Duration, log zerolog.Logger) *VolatilityService {
	return &VolatilityService{
		source: source,
		cache:  cache.NewMemory[VolatilityReading](ttl),
		log:    logger.Component(log, "volatility"),
	}
}

// Reading returns the current volatility reading. When the index cannot be
// fetched it substitutes a deterministic synthetic value from the normal
// band and marks it Estimated; scoring still needs some volatility context
// and a mid-band guess beats failing the whole analysis.
func (v *VolatilityService) Reading(ctx context.Context) VolatilityReading {
	if cached, ok := v.cache.Get(volatilitySymbol); ok {
		return cached
	}

	value, err := v.source.LatestClose(ctx, volatilitySymbol)
	if err != nil || value <= 0 {
		reading := VolatilityReading{Value: syntheticReading(time.Now().UTC()), Estimated: true}
		v.log.Warn().
			Err(err).
			Float64("synthetic", reading.Value).
			Msg("Volatility index unavailable, using synthetic reading")
		v.cache.Set(volatilitySymbol, reading)
		return reading
	}

	reading := VolatilityReading{Value: value}
	v.cache.Set(volatilitySymbol, reading)
	return reading
}

// syntheticReading derives a stable value in the 15-25 band from the UTC
// date, so repeated failures within a day agree with each other.
func syntheticReading(now time.Time) float64 {
	sum := sha256.Sum256([]byte(now.Format("2006-01-02")))
	n := binary.BigEndian.Uint64(sum[:8])
	return 15 + float64(n%1000)/1000*10
}
