package listener

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/scoracle-transfers/internal/cache"
)

func TestHandleDropsLeagueSeason(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.New(true)
	c.Set(cache.TransfersKey("GB1", 2024, "list"), []byte("[]"), time.Hour)
	c.Set(cache.TransfersKey("GB1", 2024, "clubs"), []byte("[]"), time.Hour)
	c.Set(cache.TransfersKey("GB1", 2023, "list"), []byte("[]"), time.Hour)
	c.Set(cache.TransfersKey("ES1", 2024, "list"), []byte("[]"), time.Hour)

	dropped := Handle(c, `{"league_code":"GB1","season":2024,"windows":["summer"]}`, logger)
	assert.Equal(t, 2, dropped)

	_, _, ok := c.Get(cache.TransfersKey("GB1", 2023, "list"))
	assert.True(t, ok, "other seasons stay cached")
	_, _, ok = c.Get(cache.TransfersKey("ES1", 2024, "list"))
	assert.True(t, ok, "other leagues stay cached")
}

func TestHandleIgnoresBadPayloads(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.New(true)
	c.Set(cache.TransfersKey("GB1", 2024, "list"), []byte("[]"), time.Hour)

	assert.Equal(t, 0, Handle(c, "not json", logger))
	assert.Equal(t, 0, Handle(c, `{"season":2024}`, logger))

	_, _, ok := c.Get(cache.TransfersKey("GB1", 2024, "list"))
	assert.True(t, ok)
}
