package transfermarkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-transfers/internal/config"
)

var premierLeague = config.League{Slug: "premier-league", Code: "GB1", Name: "Premier League"}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "summer with loans",
			req:  NewRequest(premierLeague, 2024, Summer),
			want: "https://www.transfermarkt.com/premier-league/transfers/wettbewerb/GB1/plus/?saison_id=2024&s_w=s&leihe=3&intern=0",
		},
		{
			name: "winter without loans",
			req:  Request{League: premierLeague, Season: 1992, Window: Winter},
			want: "https://www.transfermarkt.com/premier-league/transfers/wettbewerb/GB1/plus/?saison_id=1992&s_w=w&leihe=0&intern=0",
		},
		{
			name: "internal moves",
			req:  Request{League: premierLeague, Season: 2010, Window: Summer, Loans: true, Internal: true},
			want: "https://www.transfermarkt.com/premier-league/transfers/wettbewerb/GB1/plus/?saison_id=2010&s_w=s&leihe=3&intern=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(config.DefaultBaseURL+"/", tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildURLIsPure(t *testing.T) {
	for season := config.FirstSeason; season <= 2026; season++ {
		for _, window := range []Window{Summer, Winter} {
			for _, loans := range []bool{true, false} {
				for _, internal := range []bool{true, false} {
					req := Request{League: premierLeague, Season: season, Window: window, Loans: loans, Internal: internal}
					first, err := BuildURL(config.DefaultBaseURL, req)
					require.NoError(t, err)
					second, err := BuildURL(config.DefaultBaseURL, req)
					require.NoError(t, err)
					require.Equal(t, first, second)
				}
			}
		}
	}
}

func TestBuildURLValidation(t *testing.T) {
	_, err := BuildURL(config.DefaultBaseURL, Request{League: premierLeague, Season: 1991, Window: Summer})
	require.ErrorIs(t, err, ErrInvalidSeason)

	_, err = BuildURL(config.DefaultBaseURL, Request{League: premierLeague, Season: 2020, Window: "x"})
	require.ErrorIs(t, err, ErrInvalidWindow)

	_, err = BuildURL(config.DefaultBaseURL, Request{Season: 2020, Window: Summer})
	require.ErrorIs(t, err, ErrUnknownLeague)
	assert.Equal(t, KindValidation, Classify(err))
}

func TestParseSeason(t *testing.T) {
	season, err := ParseSeason(" 2024 ")
	require.NoError(t, err)
	assert.Equal(t, 2024, season)

	for _, in := range []string{"2020.5", "twenty", "", "1980"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSeason(in)
			require.ErrorIs(t, err, ErrInvalidSeason)
		})
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in   string
		want Window
	}{
		{"s", Summer},
		{"summer", Summer},
		{"W", Winter},
		{"Winter", Winter},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseWindow("autumn")
	require.ErrorIs(t, err, ErrInvalidWindow)

	assert.Equal(t, "summer", Summer.Name())
	assert.Equal(t, "winter", Winter.Name())
}
