package maintenance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-transfers/internal/cache"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
)

type stubScraper struct {
	fail    map[string]bool
	seasons []int
}

func (s *stubScraper) ScrapeSeason(_ context.Context, league config.League, season int, _ transfermarkt.SeasonOptions) ([]provider.Transfer, error) {
	s.seasons = append(s.seasons, season)
	if s.fail[league.Slug] {
		return nil, &transfermarkt.FetchExhaustedError{URL: "u", Attempts: 5}
	}
	return []provider.Transfer{{Season: season, Club: "Acme FC"}}, nil
}

type stubSink struct {
	batches []provider.Batch
}

func (s *stubSink) Save(_ context.Context, b provider.Batch) error {
	s.batches = append(s.batches, b)
	return nil
}

func TestRefreshCurrentSeason(t *testing.T) {
	pl, _ := config.LookupLeague("premier-league")
	ll, _ := config.LookupLeague("laliga")

	c := cache.New(true)
	c.Set(cache.TransfersKey(pl.Code, 2024, "list"), []byte("[]"), time.Hour)
	c.Set(cache.TransfersKey(pl.Code, 2023, "list"), []byte("[]"), time.Hour)
	c.Set(cache.TransfersKey(ll.Code, 2024, "list"), []byte("[]"), time.Hour)

	scraper := &stubScraper{fail: map[string]bool{"laliga": true}}
	sink := &stubSink{}
	deps := Deps{
		Scraper: scraper,
		Sink:    sink,
		Cache:   c,
		Now:     func() time.Time { return time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC) },
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	n := RefreshCurrentSeason(context.Background(), deps, Config{Leagues: []config.League{pl, ll}}, logger)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{2024, 2024}, scraper.seasons, "February belongs to the season that began the previous summer")

	require.Len(t, sink.batches, 1)
	assert.Equal(t, pl, sink.batches[0].League)
	assert.Equal(t, []string{"summer", "winter"}, sink.batches[0].Windows)

	_, _, ok := c.Get(cache.TransfersKey(pl.Code, 2024, "list"))
	assert.False(t, ok, "refreshed season is invalidated")
	_, _, ok = c.Get(cache.TransfersKey(pl.Code, 2023, "list"))
	assert.True(t, ok)
	_, _, ok = c.Get(cache.TransfersKey(ll.Code, 2024, "list"))
	assert.True(t, ok, "failed league keeps its cache")
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		RefreshInterval: 30 * time.Minute,
		RefreshLeagues:  []string{"serie-a", "bundesliga"},
		MaxAttempts:     3,
	}
	mc := FromAppConfig(cfg)
	assert.Equal(t, 30*time.Minute, mc.RefreshInterval)
	assert.Equal(t, cache.EvictInterval, mc.EvictInterval)
	require.Len(t, mc.Leagues, 2)
	assert.Equal(t, "IT1", mc.Leagues[0].Code)
	assert.Equal(t, 3, mc.MaxAttempts)
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Start(ctx, Deps{Cache: cache.New(true)}, Config{EvictInterval: time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

