// Command ingest scrapes transfer-window pages and writes the records to
// CSV files and, optionally, Postgres.
//
// Usage:
//
//	scoracle-ingest leagues
//	scoracle-ingest scrape --league premier-league --season 2024
//	scoracle-ingest scrape --league laliga --season 2010 --window winter --db
//	scoracle-ingest backfill --league premier-league --from 1992 --to 2024 --workers 2
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-transfers/internal/backfill"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/db"
	"github.com/albapepper/scoracle-transfers/internal/export"
	"github.com/albapepper/scoracle-transfers/internal/provider"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
	"github.com/albapepper/scoracle-transfers/internal/seed"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	var verbose bool
	root := &cobra.Command{
		Use:           "scoracle-ingest",
		Short:         "Transfer-window scraping CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose || os.Getenv("DEBUG") == "true" {
				logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(leaguesCmd())
	root.AddCommand(scrapeCmd())
	root.AddCommand(backfillCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "kind", transfermarkt.Classify(err).String(), "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// leagues command
// --------------------------------------------------------------------------

func leaguesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leagues",
		Short: "List supported leagues",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderLeagues(cmd.OutOrStdout())
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// scrape command
// --------------------------------------------------------------------------

// scrapeFlags are shared by scrape and backfill.
type scrapeFlags struct {
	league      string
	window      string
	loans       bool
	internal    bool
	maxAttempts int
	out         string
	toDB        bool
}

func (f *scrapeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.league, "league", "premier-league", "League slug (see `leagues`)")
	cmd.Flags().StringVar(&f.window, "window", "both", "Transfer window: summer, winter or both")
	cmd.Flags().BoolVar(&f.loans, "loans", true, "Include loans (loan returns are always excluded)")
	cmd.Flags().BoolVar(&f.internal, "internal", false, "Include moves between a club's own squads")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", 0, "Attempts per page; 0 uses TM_MAX_ATTEMPTS")
	cmd.Flags().StringVar(&f.out, "out", "", "Destination directory; empty uses DATA_DIR")
	cmd.Flags().BoolVar(&f.toDB, "db", false, "Also replace the scraped windows in Postgres")
}

// seasonOptions validates the flags that do not depend on configuration.
func (f *scrapeFlags) seasonOptions(cfg *config.Config) (config.League, transfermarkt.SeasonOptions, error) {
	league, err := config.LookupLeague(f.league)
	if err != nil {
		return config.League{}, transfermarkt.SeasonOptions{}, err
	}
	windows, err := parseWindows(f.window)
	if err != nil {
		return config.League{}, transfermarkt.SeasonOptions{}, err
	}
	maxAttempts := f.maxAttempts
	if maxAttempts == 0 {
		maxAttempts = cfg.MaxAttempts
	}
	return league, transfermarkt.SeasonOptions{
		Windows:      windows,
		ExcludeLoans: !f.loans,
		Internal:     f.internal,
		MaxAttempts:  maxAttempts,
	}, nil
}

func scrapeCmd() *cobra.Command {
	var flags scrapeFlags
	var season int
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape one league season and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(func(ctx context.Context, cfg *config.Config, scraper *transfermarkt.Scraper) error {
				league, opts, err := flags.seasonOptions(cfg)
				if err != nil {
					return err
				}
				sink, closeSink, err := buildSink(ctx, cfg, flags)
				if err != nil {
					return err
				}
				defer closeSink()

				start := time.Now()
				records, err := scraper.ScrapeSeason(ctx, league, season, opts)
				if err != nil {
					return err
				}
				batch := provider.Batch{League: league, Season: season, Windows: backfill.WindowNames(opts.Windows), Records: records}
				if err := sink.Save(ctx, batch); err != nil {
					return fmt.Errorf("save: %w", err)
				}

				logger.Info("Scrape finished",
					"league", league.Slug, "season", season, "records", len(records),
					"duration", time.Since(start).Round(time.Second))
				renderClubTotals(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&season, "season", config.CurrentSeason(time.Now()), "Season start year")
	return cmd
}

// --------------------------------------------------------------------------
// backfill command
// --------------------------------------------------------------------------

func backfillCmd() *cobra.Command {
	var flags scrapeFlags
	var from, to, workers int
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Scrape a range of seasons, one file per season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(func(ctx context.Context, cfg *config.Config, scraper *transfermarkt.Scraper) error {
				league, opts, err := flags.seasonOptions(cfg)
				if err != nil {
					return err
				}
				jobs, err := backfill.Plan(league, from, to)
				if err != nil {
					return err
				}
				sink, closeSink, err := buildSink(ctx, cfg, flags)
				if err != nil {
					return err
				}
				defer closeSink()

				result := backfill.Run(ctx, scraper, sink, jobs, backfill.Options{Workers: workers, Season: opts}, logger)
				renderBackfill(cmd.OutOrStdout(), result)
				for _, e := range result.Errors {
					logger.Error("backfill error", "error", e)
				}
				if result.Failed > 0 {
					return fmt.Errorf("%d of %d seasons failed", result.Failed, result.JobsFound)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&from, "from", config.FirstSeason, "First season")
	cmd.Flags().IntVar(&to, "to", config.CurrentSeason(time.Now()), "Last season")
	cmd.Flags().IntVar(&workers, "workers", 2, "Concurrent worker count")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runScrape handles config loading, scraper construction, and context
// cancellation.
func runScrape(fn func(ctx context.Context, cfg *config.Config, scraper *transfermarkt.Scraper) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fetcher := transfermarkt.NewFetcher(transfermarkt.FetcherConfig{
		Timeout:           cfg.RequestTimeout,
		Identities:        transfermarkt.RandomIdentity{Agents: cfg.UserAgents},
		RequestsPerMinute: cfg.RequestsPerMinute,
		Logger:            logger,
	})
	scraper := transfermarkt.NewScraper(cfg.BaseURL, fetcher, logger)

	return fn(ctx, cfg, scraper)
}

// buildSink returns the CSV sink, plus the Postgres sink when requested.
// The returned func releases the database pool.
func buildSink(ctx context.Context, cfg *config.Config, flags scrapeFlags) (backfill.Sink, func(), error) {
	dest := flags.out
	if dest == "" {
		dest = cfg.DataDir
	}
	sinks := backfill.MultiSink{export.CSVSink{Dest: dest, Logger: logger}}
	if !flags.toDB {
		return sinks, func() {}, nil
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	sinks = append(sinks, seed.NewStore(pool.Pool, logger))
	return sinks, pool.Close, nil
}

// parseWindows accepts "both" or a single window name or code.
func parseWindows(s string) ([]transfermarkt.Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "all":
		return []transfermarkt.Window{transfermarkt.Summer, transfermarkt.Winter}, nil
	}
	w, err := transfermarkt.ParseWindow(s)
	if err != nil {
		return nil, errors.Join(err, errors.New("use summer, winter or both"))
	}
	return []transfermarkt.Window{w}, nil
}
