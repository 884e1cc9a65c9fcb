// Package transfermarkt scrapes transfer-window summary pages.
//
// A scrape runs URL building, fetching with retries, table extraction and
// normalization for one (league, season, window). It either returns every
// record on the page or an error; there are no partial results.
//
// Errors fall into four kinds (see Classify): validation errors are
// returned before any network call, fetch exhaustion after the retry budget
// is spent, structure errors when the page no longer matches the template,
// and data errors when a cell fails coercion.
package transfermarkt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
)

// PageFetcher loads a page with retries. *Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, maxAttempts int) (*RawPage, error)
}

// Scraper runs the page pipeline. It is safe for concurrent use when its
// PageFetcher is.
type Scraper struct {
	baseURL string
	fetcher PageFetcher
	logger  *slog.Logger
}

// NewScraper creates a Scraper against baseURL.
func NewScraper(baseURL string, fetcher PageFetcher, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	return &Scraper{baseURL: baseURL, fetcher: fetcher, logger: logger}
}

// Scrape fetches and normalizes one transfer window.
func (s *Scraper) Scrape(ctx context.Context, req Request, maxAttempts int) ([]provider.Transfer, error) {
	url, err := BuildURL(s.baseURL, req)
	if err != nil {
		return nil, err
	}

	log := s.logger.With("league", req.League.Slug, "season", req.Season, "window", req.Window.Name())
	log.Info("Scraping transfer window", "url", url)

	page, err := s.fetcher.Fetch(ctx, url, maxAttempts)
	if err != nil {
		return nil, err
	}

	blocks, err := Extract(page)
	if err != nil {
		return nil, err
	}

	records, err := Normalize(blocks, req.Season, req.Window, req.League)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", url, err)
	}

	log.Info("Parsed transfer window", "clubs", len(blocks), "records", len(records))
	return records, nil
}

// SeasonOptions controls ScrapeSeason. A zero value scrapes both windows
// with loans and without internal moves.
type SeasonOptions struct {
	Windows      []Window
	ExcludeLoans bool
	Internal     bool
	MaxAttempts  int
}

func (o SeasonOptions) windows() []Window {
	if len(o.Windows) == 0 {
		return []Window{Summer, Winter}
	}
	return o.Windows
}

// ScrapeSeason scrapes each requested window of a season and returns the
// merged records in output order. Any failing window fails the season.
func (s *Scraper) ScrapeSeason(ctx context.Context, league config.League, season int, opts SeasonOptions) ([]provider.Transfer, error) {
	var all []provider.Transfer
	for _, window := range opts.windows() {
		req := NewRequest(league, season, window)
		req.Loans = !opts.ExcludeLoans
		req.Internal = opts.Internal
		records, err := s.Scrape(ctx, req, opts.MaxAttempts)
		if err != nil {
			return nil, fmt.Errorf("%s %d %s: %w", league.Slug, season, window.Name(), err)
		}
		all = append(all, records...)
	}
	SortTransfers(all)
	return all, nil
}
