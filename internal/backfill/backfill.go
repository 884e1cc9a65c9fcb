// Package backfill scrapes many league seasons through a worker pool and
// hands each completed season to a Sink.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
)

// SeasonScraper scrapes one league season. *transfermarkt.Scraper
// satisfies it.
type SeasonScraper interface {
	ScrapeSeason(ctx context.Context, league config.League, season int, opts transfermarkt.SeasonOptions) ([]provider.Transfer, error)
}

// Sink persists a scraped batch.
type Sink interface {
	Save(ctx context.Context, batch provider.Batch) error
}

// MultiSink saves to each sink in order and stops at the first failure.
type MultiSink []Sink

func (m MultiSink) Save(ctx context.Context, batch provider.Batch) error {
	for _, s := range m {
		if err := s.Save(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// Job is one league season.
type Job struct {
	League config.League
	Season int
}

// Plan returns one job per season from..to inclusive.
func Plan(league config.League, from, to int) ([]Job, error) {
	if from < config.FirstSeason {
		return nil, fmt.Errorf("%w: %d is before %d", transfermarkt.ErrInvalidSeason, from, config.FirstSeason)
	}
	if to < from {
		return nil, fmt.Errorf("%w: range %d..%d is empty", transfermarkt.ErrInvalidSeason, from, to)
	}
	jobs := make([]Job, 0, to-from+1)
	for season := from; season <= to; season++ {
		jobs = append(jobs, Job{League: league, Season: season})
	}
	return jobs, nil
}

// JobResult is the outcome of one job.
type JobResult struct {
	League   string
	Season   int
	Records  int
	Success  bool
	Kind     string
	Error    string
	Duration time.Duration
}

// Result tracks the outcome of a full run.
type Result struct {
	JobsFound     int
	JobsProcessed int
	Succeeded     int
	Failed        int
	Records       int
	Duration      time.Duration
	Errors        []string
	Jobs          []JobResult
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"found=%d processed=%d succeeded=%d failed=%d records=%d dur=%s",
		r.JobsFound, r.JobsProcessed, r.Succeeded, r.Failed, r.Records,
		r.Duration.Round(time.Second))
}

// Options controls a run.
type Options struct {
	Workers int
	Season  transfermarkt.SeasonOptions
}

// Run processes jobs with a pool of workers. A failed job saves nothing;
// other jobs carry on. Cancelling ctx stops workers from taking new jobs;
// the jobs never started count as failed with kind "cancelled".
func Run(ctx context.Context, scraper SeasonScraper, sink Sink, jobs []Job, opts Options, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	result := Result{JobsFound: len(jobs)}
	if len(jobs) == 0 {
		logger.Info("No seasons to backfill")
		return result
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	ch := make(chan Job, len(jobs))
	for _, j := range jobs {
		ch <- j
	}
	close(ch)

	windows := WindowNames(opts.Season.Windows)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range ch {
				// After cancellation the queue is drained without running
				// jobs so every skipped season is reported.
				if ctx.Err() != nil {
					r := JobResult{League: job.League.Slug, Season: job.Season, Kind: "cancelled",
						Error: "not started: " + ctx.Err().Error()}
					mu.Lock()
					result.Jobs = append(result.Jobs, r)
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("%s %d: %s", r.League, r.Season, r.Error))
					mu.Unlock()
					continue
				}
				r := runJob(ctx, scraper, sink, job, opts.Season, windows, logger)

				mu.Lock()
				result.Jobs = append(result.Jobs, r)
				result.JobsProcessed++
				if r.Success {
					result.Succeeded++
					result.Records += r.Records
				} else {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("%s %d: %s", r.League, r.Season, r.Error))
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	sort.Slice(result.Jobs, func(i, j int) bool {
		if result.Jobs[i].League != result.Jobs[j].League {
			return result.Jobs[i].League < result.Jobs[j].League
		}
		return result.Jobs[i].Season < result.Jobs[j].Season
	})
	result.Duration = time.Since(start)

	logger.Info("Backfill complete", "summary", result.Summary())
	return result
}

func runJob(ctx context.Context, scraper SeasonScraper, sink Sink, job Job, opts transfermarkt.SeasonOptions, windows []string, logger *slog.Logger) JobResult {
	start := time.Now()
	r := JobResult{League: job.League.Slug, Season: job.Season}

	fail := func(err error) JobResult {
		r.Kind = transfermarkt.Classify(err).String()
		if errors.Is(err, context.Canceled) {
			r.Kind = "cancelled"
		}
		r.Error = err.Error()
		r.Duration = time.Since(start)
		logger.Error("Season failed", "league", r.League, "season", r.Season, "kind", r.Kind, "error", err)
		return r
	}

	records, err := scraper.ScrapeSeason(ctx, job.League, job.Season, opts)
	if err != nil {
		return fail(err)
	}
	batch := provider.Batch{League: job.League, Season: job.Season, Windows: windows, Records: records}
	if err := sink.Save(ctx, batch); err != nil {
		return fail(fmt.Errorf("save: %w", err))
	}

	r.Records = len(records)
	r.Success = true
	r.Duration = time.Since(start)
	return r
}

// WindowNames returns the names of windows, defaulting to both.
func WindowNames(windows []transfermarkt.Window) []string {
	if len(windows) == 0 {
		windows = []transfermarkt.Window{transfermarkt.Summer, transfermarkt.Winter}
	}
	names := make([]string, len(windows))
	for i, w := range windows {
		names[i] = w.Name()
	}
	return names
}
