package backfill

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
)

var laliga = config.League{Slug: "laliga", Code: "ES1", Name: "LaLiga"}

type fakeScraper struct {
	failing map[int]error
}

func (f fakeScraper) ScrapeSeason(_ context.Context, league config.League, season int, _ transfermarkt.SeasonOptions) ([]provider.Transfer, error) {
	if err := f.failing[season]; err != nil {
		return nil, err
	}
	return []provider.Transfer{
		{Season: season, League: league.Name, Club: "Acme FC", Movement: "in", Window: "summer"},
		{Season: season, League: league.Name, Club: "Acme FC", Movement: "out", Window: "winter"},
	}, nil
}

type memorySink struct {
	mu      sync.Mutex
	batches map[int]provider.Batch
	err     error
}

func (m *memorySink) Save(_ context.Context, b provider.Batch) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batches == nil {
		m.batches = map[int]provider.Batch{}
	}
	m.batches[b.Season] = b
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPlan(t *testing.T) {
	jobs, err := Plan(laliga, 1992, 1994)
	require.NoError(t, err)
	assert.Equal(t, []Job{{laliga, 1992}, {laliga, 1993}, {laliga, 1994}}, jobs)

	_, err = Plan(laliga, 1990, 1994)
	require.ErrorIs(t, err, transfermarkt.ErrInvalidSeason)

	_, err = Plan(laliga, 2000, 1999)
	require.ErrorIs(t, err, transfermarkt.ErrInvalidSeason)
}

func TestRunCollectsFailuresWithoutPartialOutput(t *testing.T) {
	jobs, err := Plan(laliga, 2000, 2005)
	require.NoError(t, err)

	scraper := fakeScraper{failing: map[int]error{
		2002: &transfermarkt.FetchExhaustedError{URL: "u", Attempts: 5},
		2004: &transfermarkt.StructureError{URL: "u", Reason: "no club headings"},
	}}
	sink := &memorySink{}

	result := Run(context.Background(), scraper, sink, jobs, Options{Workers: 3}, quietLogger())

	assert.Equal(t, 6, result.JobsFound)
	assert.Equal(t, 6, result.JobsProcessed)
	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 8, result.Records)
	assert.Len(t, result.Errors, 2)

	require.Len(t, result.Jobs, 6)
	for i, jr := range result.Jobs {
		assert.Equal(t, 2000+i, jr.Season, "jobs are reported in season order")
	}
	assert.Equal(t, "fetch", result.Jobs[2].Kind)
	assert.Equal(t, "structure", result.Jobs[4].Kind)

	assert.Len(t, sink.batches, 4)
	assert.NotContains(t, sink.batches, 2002)
	assert.NotContains(t, sink.batches, 2004)
	assert.Equal(t, []string{"summer", "winter"}, sink.batches[2000].Windows)
	assert.Equal(t, laliga, sink.batches[2000].League)
}

func TestRunSinkFailure(t *testing.T) {
	jobs, _ := Plan(laliga, 2010, 2010)
	result := Run(context.Background(), fakeScraper{}, &memorySink{err: errors.New("disk full")}, jobs, Options{}, quietLogger())

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Records)
	assert.Contains(t, result.Errors[0], "disk full")
}

func TestRunCancelled(t *testing.T) {
	jobs, _ := Plan(laliga, 2010, 2020)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &memorySink{}
	result := Run(ctx, fakeScraper{}, sink, jobs, Options{Workers: 2}, quietLogger())
	assert.Equal(t, 11, result.JobsFound)
	assert.Zero(t, result.JobsProcessed)
	assert.Equal(t, 11, result.Failed, "skipped seasons count as failures")
	assert.Zero(t, result.Succeeded)
	assert.Len(t, result.Errors, 11)
	require.Len(t, result.Jobs, 11)
	for _, j := range result.Jobs {
		assert.False(t, j.Success)
		assert.Equal(t, "cancelled", j.Kind)
	}
	assert.Equal(t, 2010, result.Jobs[0].Season)
	assert.Empty(t, sink.batches)
}

func TestMultiSinkStopsAtFirstFailure(t *testing.T) {
	first := &memorySink{err: errors.New("boom")}
	second := &memorySink{}

	err := MultiSink{first, second}.Save(context.Background(), provider.Batch{Season: 2020})
	require.Error(t, err)
	assert.Empty(t, second.batches)

	ok := &memorySink{}
	require.NoError(t, MultiSink{ok, second}.Save(context.Background(), provider.Batch{Season: 2020}))
	assert.Contains(t, ok.batches, 2020)
	assert.Contains(t, second.batches, 2020)
}

func TestWindowNames(t *testing.T) {
	assert.Equal(t, []string{"summer", "winter"}, WindowNames(nil))
	assert.Equal(t, []string{"winter"}, WindowNames([]transfermarkt.Window{transfermarkt.Winter}))
}
