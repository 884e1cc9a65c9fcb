// Package maintenance runs periodic background tasks as Go tickers inside
// the API process: re-scraping the current season and evicting expired
// cache entries.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/scoracle-transfers/internal/backfill"
	"github.com/albapepper/scoracle-transfers/internal/cache"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	RefreshInterval time.Duration // Re-scrape the current season
	EvictInterval   time.Duration // Drop expired cache entries
	Leagues         []config.League
	MaxAttempts     int
}

// FromAppConfig builds a Config from the application configuration.
// Leagues were validated by config.Load.
func FromAppConfig(cfg *config.Config) Config {
	leagues := make([]config.League, 0, len(cfg.RefreshLeagues))
	for _, slug := range cfg.RefreshLeagues {
		if l, err := config.LookupLeague(slug); err == nil {
			leagues = append(leagues, l)
		}
	}
	return Config{
		RefreshInterval: cfg.RefreshInterval,
		EvictInterval:   cache.EvictInterval,
		Leagues:         leagues,
		MaxAttempts:     cfg.MaxAttempts,
	}
}

// Deps are the collaborators of the maintenance tasks.
type Deps struct {
	Scraper backfill.SeasonScraper
	Sink    backfill.Sink
	Cache   *cache.Cache
	Now     func() time.Time
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, deps Deps, cfg Config, logger *slog.Logger) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger.Info("Maintenance tickers started",
		"refresh", cfg.RefreshInterval,
		"evict", cfg.EvictInterval,
		"leagues", len(cfg.Leagues))

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Refresh: re-scrape the season in progress so the API stays current
	if cfg.RefreshInterval > 0 && deps.Scraper != nil && deps.Sink != nil {
		t := time.NewTicker(cfg.RefreshInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "refresh", func() { RefreshCurrentSeason(ctx, deps, cfg, logger) })
	}

	// Evict: drop expired cache entries
	if cfg.EvictInterval > 0 && deps.Cache != nil {
		t := time.NewTicker(cfg.EvictInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "evict", func() {
			if n := deps.Cache.Evict(); n > 0 {
				logger.Debug("Evicted expired cache entries", "count", n)
			}
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, name string, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// RefreshCurrentSeason scrapes both windows of the current season for each
// league, replaces the stored rows and drops the league season's cached
// responses. A failing league is logged and skipped.
func RefreshCurrentSeason(ctx context.Context, deps Deps, cfg Config, logger *slog.Logger) (refreshed int) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	season := config.CurrentSeason(now())
	opts := transfermarkt.SeasonOptions{MaxAttempts: cfg.MaxAttempts}

	for _, league := range cfg.Leagues {
		if ctx.Err() != nil {
			return refreshed
		}
		start := time.Now()
		records, err := deps.Scraper.ScrapeSeason(ctx, league, season, opts)
		if err != nil {
			logger.Warn("Refresh: scrape failed",
				"league", league.Slug, "season", season,
				"kind", transfermarkt.Classify(err).String(), "error", err)
			continue
		}

		batch := provider.Batch{
			League:  league,
			Season:  season,
			Windows: []string{provider.WindowSummer, provider.WindowWinter},
			Records: records,
		}
		if err := deps.Sink.Save(ctx, batch); err != nil {
			logger.Warn("Refresh: save failed", "league", league.Slug, "season", season, "error", err)
			continue
		}

		dropped := 0
		if deps.Cache != nil {
			dropped = deps.Cache.InvalidatePrefix(cache.TransfersPrefix(league.Code, season))
		}
		refreshed++
		logger.Info("Refresh: season updated",
			"league", league.Slug, "season", season, "records", len(records),
			"cache_dropped", dropped, "duration", time.Since(start).Round(time.Millisecond))
	}
	return refreshed
}
