// Package listener provides a Postgres LISTEN/NOTIFY consumer that keeps the
// API cache consistent with writes made by other processes. It holds a
// dedicated pgx connection (not from the pool) listening on the
// transfers_changed channel.
//
// When the ingest CLI replaces a league season's windows, the transaction
// publishes a seed.ChangeEvent and this consumer drops the cached responses
// for that league season.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-transfers/internal/cache"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/seed"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Start opens a dedicated connection and listens on config.TransfersChannel.
// It reconnects automatically on connection loss. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, appCache *cache.Cache, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, appCache, logger)
		if ctx.Err() != nil {
			logger.Info("Transfers listener stopped (context cancelled)")
			return
		}

		logger.Error("Transfers listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, appCache *cache.Cache, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+config.TransfersChannel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", config.TransfersChannel, err)
	}
	logger.Info("Transfers listener connected", "channel", config.TransfersChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		Handle(appCache, notification.Payload, logger)
	}
}

// Handle applies one notification payload to the cache and returns the
// number of dropped entries. Malformed payloads are logged and ignored.
func Handle(appCache *cache.Cache, payload string, logger *slog.Logger) int {
	var event seed.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Warn("Failed to parse transfers event", "payload", payload, "error", err)
		return 0
	}
	if event.LeagueCode == "" || event.Season == 0 {
		logger.Warn("Ignoring incomplete transfers event", "payload", payload)
		return 0
	}

	dropped := appCache.InvalidatePrefix(cache.TransfersPrefix(event.LeagueCode, event.Season))
	logger.Info("Transfers event received",
		"league", event.LeagueCode,
		"season", event.Season,
		"windows", event.Windows,
		"cache_dropped", dropped)
	return dropped
}
