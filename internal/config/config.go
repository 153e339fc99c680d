// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider tiers control how aggressively the screener may call the primary
// quote provider. The premium tier allows far higher request rates.
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the file cache and universe file (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Provider settings
	ProviderMode string        // auto, primary, secondary
	ProviderTier string        // free or premium
	CallInterval time.Duration // Minimum gap between primary provider calls
	HTTPTimeout  time.Duration

	// Screening settings
	MaxPerScreen  int // Cap on instruments examined in a single screen
	StreamDelay   time.Duration
	StreamUseGate bool // Route streaming fetches through the strict gate as well

	// Cache TTLs
	SnapshotTTL   time.Duration // In-memory per-instrument snapshots
	VolatilityTTL time.Duration // Volatility index reading
	ScreenTTL     time.Duration // File-cached screening runs
	UniverseTTL   time.Duration // Reference universe list
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DIPSCAN_DATA_DIR", "")
	if dataDir == "" {
		dataDir = filepath.Join(os.TempDir(), "dipscan")
	}

	// Always resolve to absolute path and ensure the directory exists
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tier := getEnv("PROVIDER_TIER", TierPremium)

	// The free tier is heavily throttled upstream: one call every 12 seconds
	// and a small per-screen budget. Premium allows ~150 calls/minute.
	callInterval := 400 * time.Millisecond
	maxPerScreen := 1000
	if tier == TierFree {
		callInterval = 12 * time.Second
		maxPerScreen = 20
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8000),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		ProviderMode: getEnv("PROVIDER_MODE", "auto"),
		ProviderTier: tier,
		CallInterval: getEnvAsDuration("CALL_INTERVAL", callInterval),
		HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxPerScreen:  getEnvAsInt("MAX_PER_SCREEN", maxPerScreen),
		StreamDelay:   getEnvAsDuration("STREAM_DELAY", 100*time.Millisecond),
		StreamUseGate: getEnvAsBool("STREAM_USE_GATE", false),

		SnapshotTTL:   getEnvAsDuration("SNAPSHOT_TTL", 5*time.Minute),
		VolatilityTTL: getEnvAsDuration("VOLATILITY_TTL", 10*time.Minute),
		ScreenTTL:     getEnvAsDuration("SCREEN_TTL", time.Hour),
		UniverseTTL:   getEnvAsDuration("UNIVERSE_TTL", 24*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.ProviderMode {
	case "auto", "primary", "secondary":
	default:
		return fmt.Errorf("invalid provider mode: %s", c.ProviderMode)
	}

	if c.ProviderTier != TierFree && c.ProviderTier != TierPremium {
		return fmt.Errorf("invalid provider tier: %s", c.ProviderTier)
	}

	if c.CallInterval <= 0 {
		return fmt.Errorf("call interval must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
