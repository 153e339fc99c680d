// Package main is the entry point for the dipscan server. It screens a
// universe of instruments for oversold dips, scores each candidate, and
// estimates the credit available from a defined-risk put spread on it.
//
// Startup sequence:
//  1. Loads configuration from environment variables
//  2. Initializes logging
//  3. Opens the file cache database and schedules its nightly cleanup
//  4. Wires the provider chain (primary quote provider behind a rate gate,
//     CSV fallback provider behind it)
//  5. Builds the analysis, screening, and scoring services
//  6. Starts the HTTP server and waits for a shutdown signal
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aristath/dipscan/internal/analysis"
	"github.com/aristath/dipscan/internal/cache"
	"github.com/aristath/dipscan/internal/clients/stooq"
	"github.com/aristath/dipscan/internal/clients/yahoo"
	"github.com/aristath/dipscan/internal/config"
	"github.com/aristath/dipscan/internal/database"
	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/internal/ratelimit"
	"github.com/aristath/dipscan/internal/screener"
	"github.com/aristath/dipscan/internal/server"
	"github.com/aristath/dipscan/pkg/httputil"
	"github.com/aristath/dipscan/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("provider_mode", cfg.ProviderMode).
		Str("provider_tier", cfg.ProviderTier).
		Msg("Starting dipscan")

	// File cache for screening runs and the universe list.
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	store, err := cache.NewStore(cacheDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache store")
	}

	// Nightly cleanup of expired cache rows.
	scheduler := cron.New()
	cleanup := cache.NewCleanupJob(store, log)
	if err := cleanup.Schedule(scheduler); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache cleanup")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Provider chain: primary quote provider behind the shared rate gate,
	// CSV fallback called directly.
	httpClient := httputil.New(cfg.HTTPTimeout, log)
	primary := yahoo.NewClient(httpClient, log)
	secondary := stooq.NewClient(httpClient, log)
	gate := ratelimit.NewGate(cfg.CallInterval)
	resolver := marketdata.NewResolver(primary, secondary, gate, marketdata.Mode(cfg.ProviderMode), log)

	volatility := analysis.NewVolatilityService(
		analysis.NewGatedIndexSource(gate, primary), cfg.VolatilityTTL, log)
	analysisSvc := analysis.NewService(resolver, volatility, cfg.SnapshotTTL, log)

	universe := screener.NewUniverse(store, filepath.Join(cfg.DataDir, "universe.json"), cfg.UniverseTTL, log)
	scr := screener.New(universe, resolver, store, screener.Config{
		ScreenTTL:     cfg.ScreenTTL,
		StreamDelay:   cfg.StreamDelay,
		StreamUseGate: cfg.StreamUseGate,
		MaxPerScreen:  cfg.MaxPerScreen,
	}, log)

	srv := server.New(cfg, analysisSvc, scr, log)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
