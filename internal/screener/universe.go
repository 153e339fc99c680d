// Package screener runs the dip screen across an instrument universe, in
// batch or streaming form.
package screener

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dipscan/internal/cache"
	"github.com/aristath/dipscan/pkg/logger"
)

// defaultUniverse is the built-in large-cap fallback used when no universe
// file is available. Enough breadth to make a screen meaningful.
var defaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK-B",
	"JPM", "V", "UNH", "JNJ", "XOM", "WMT", "MA", "PG", "HD", "CVX",
	"ABBV", "MRK", "KO", "PEP", "AVGO", "COST", "LLY", "BAC", "ADBE",
	"CRM", "MCD", "CSCO", "TMO", "ACN", "NFLX", "AMD", "DIS", "INTC",
	"ORCL", "QCOM", "TXN", "NKE", "PM", "IBM", "CAT", "GE", "HON",
	"AMGN", "BA", "SBUX", "GS", "MS",
}

// quickUniverse is a curated high-liquidity subset for fast scans.
var quickUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA",
	"AMD", "NFLX", "JPM", "BAC", "DIS", "BA", "INTC", "XOM",
}

// Universe loads the reference symbol list: file-cache first, then the
// JSON file under the data dir, then the built-in fallback.
type Universe struct {
	store *cache.Store
	path  string
	ttl   time.Duration
	log   zerolog.Logger
}

// NewUniverse creates the universe loader. path may point at a missing
// file; the fallback list covers that.
func NewUniverse(store *cache.Store, path string, ttl time.Duration, log zerolog.Logger) *Universe {
	return &Universe{
		store: store,
		path:  path,
		ttl:   ttl,
		log:   logger.Component(log, "universe"),
	}
}

// Symbols returns the screening universe.
func (u *Universe) Symbols() []string {
	key := cache.Key("universe", u.path)

	var cached []string
	if u.store != nil && u.store.GetIfFresh(key, &cached) && len(cached) > 0 {
		return cached
	}

	symbols, err := loadUniverseFile(u.path)
	if err != nil {
		u.log.Warn().Err(err).Str("path", u.path).Msg("Universe file unavailable, using built-in list")
		symbols = defaultUniverse
	}

	if u.store != nil {
		u.store.Put(key, symbols, u.ttl)
	}
	return symbols
}

// loadUniverseFile reads a symbol list from disk. Accepts either a bare
// JSON array or an object with a "symbols" field.
func loadUniverseFile(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("no universe file configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var wrapped struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Symbols) > 0 {
		return wrapped.Symbols, nil
	}

	return nil, fmt.Errorf("universe file %s holds no symbols", path)
}
