// Command api is the Scoracle Transfers API server.
//
// Usage:
//
//	scoracle-api
//	API_PORT=8080 REFRESH_INTERVAL_MINUTES=360 scoracle-api

// @title Scoracle Transfers API
// @version 1.0.0
// @description Read API over scraped transfer-window records: per-league, per-season transfers and per-club money flow. Responses are JSON built by Postgres.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-transfers/internal/api"
	"github.com/albapepper/scoracle-transfers/internal/cache"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/db"
	"github.com/albapepper/scoracle-transfers/internal/listener"
	"github.com/albapepper/scoracle-transfers/internal/maintenance"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
	"github.com/albapepper/scoracle-transfers/internal/seed"

	_ "github.com/albapepper/scoracle-transfers/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Start LISTEN/NOTIFY consumer so writes from the ingest CLI drop stale
	// cached responses
	go listener.Start(ctx, cfg.DatabaseURL, appCache, logger)

	// Start maintenance tickers (current-season refresh, cache eviction)
	fetcher := transfermarkt.NewFetcher(transfermarkt.FetcherConfig{
		Timeout:           cfg.RequestTimeout,
		Identities:        transfermarkt.RandomIdentity{Agents: cfg.UserAgents},
		RequestsPerMinute: cfg.RequestsPerMinute,
		Logger:            logger,
	})
	go maintenance.Start(ctx, maintenance.Deps{
		Scraper: transfermarkt.NewScraper(cfg.BaseURL, fetcher, logger),
		Sink:    seed.NewStore(pool.Pool, logger),
		Cache:   appCache,
	}, maintenance.FromAppConfig(cfg), logger)

	// Create router
	router := api.NewRouter(pool.Pool, appCache, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Scoracle Transfers API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
