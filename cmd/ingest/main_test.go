package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
)

func TestParseWindows(t *testing.T) {
	both, err := parseWindows("both")
	require.NoError(t, err)
	assert.Equal(t, []transfermarkt.Window{transfermarkt.Summer, transfermarkt.Winter}, both)

	winter, err := parseWindows("Winter")
	require.NoError(t, err)
	assert.Equal(t, []transfermarkt.Window{transfermarkt.Winter}, winter)

	_, err = parseWindows("autumn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use summer, winter or both")
}

func TestSeasonOptions(t *testing.T) {
	cfg := &config.Config{MaxAttempts: 3}
	flags := scrapeFlags{league: "laliga", window: "summer", loans: false, internal: true}

	league, opts, err := flags.seasonOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ES1", league.Code)
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.True(t, opts.ExcludeLoans)
	assert.True(t, opts.Internal)
	assert.Equal(t, []transfermarkt.Window{transfermarkt.Summer}, opts.Windows)

	flags.maxAttempts = 7
	_, opts, err = flags.seasonOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.MaxAttempts)

	flags.league = "mls"
	_, _, err = flags.seasonOptions(cfg)
	assert.ErrorIs(t, err, config.ErrUnknownLeague)
}

func TestSummarizeClubs(t *testing.T) {
	records := []provider.Transfer{
		{Club: "Acme FC", Movement: provider.MovementIn, Fee: 10_000_000},
		{Club: "Acme FC", Movement: provider.MovementOut, Fee: 2_000_000, IsLoan: 1},
		{Club: "Rival FC", Movement: provider.MovementOut, Fee: 30_000_000},
		{Club: "Beta FC", Movement: provider.MovementIn, Fee: 10_000_000},
	}

	totals := summarizeClubs(records)
	require.Len(t, totals, 3)

	assert.Equal(t, "Beta FC", totals[0].club)
	assert.Equal(t, "Acme FC", totals[1].club)
	assert.Equal(t, 1, totals[1].in)
	assert.Equal(t, 1, totals[1].out)
	assert.Equal(t, 1, totals[1].loans)
	assert.InDelta(t, 8_000_000, totals[1].net(), 0.001)
	assert.Equal(t, "Rival FC", totals[2].club)
}

func TestRenderClubTotals(t *testing.T) {
	var buf bytes.Buffer
	renderClubTotals(&buf, []provider.Transfer{
		{Club: "Acme FC", Movement: provider.MovementIn, Fee: 4_500_000},
	})
	out := buf.String()
	assert.Contains(t, out, "Acme FC")
	assert.Contains(t, out, "€4.50m")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "-", money(0))
	assert.Equal(t, "€12.30m", money(12_300_000))
	assert.Equal(t, "€-1.00m", money(-1_000_000))
}
