package config

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// FirstSeason is the earliest season the transfer pages cover.
const FirstSeason = 1992

// ErrUnknownLeague is returned for a slug missing from LeagueRegistry.
var ErrUnknownLeague = errors.New("unknown league")

// League maps a URL slug to the site's competition code and display name.
type League struct {
	Slug string
	Code string
	Name string
}

// LeagueRegistry lists the supported competitions, keyed by slug.
var LeagueRegistry = map[string]League{
	"premier-league": {Slug: "premier-league", Code: "GB1", Name: "Premier League"},
	"championship":   {Slug: "championship", Code: "GB2", Name: "Championship"},
	"laliga":         {Slug: "laliga", Code: "ES1", Name: "LaLiga"},
	"bundesliga":     {Slug: "bundesliga", Code: "L1", Name: "Bundesliga"},
	"serie-a":        {Slug: "serie-a", Code: "IT1", Name: "Serie A"},
	"ligue-1":        {Slug: "ligue-1", Code: "FR1", Name: "Ligue 1"},
	"eredivisie":     {Slug: "eredivisie", Code: "NL1", Name: "Eredivisie"},
	"liga-portugal":  {Slug: "liga-portugal", Code: "PO1", Name: "Liga Portugal"},
}

// LookupLeague returns the registry entry for slug.
func LookupLeague(slug string) (League, error) {
	league, ok := LeagueRegistry[slug]
	if !ok {
		return League{}, fmt.Errorf("%w: %q not found or is not supported", ErrUnknownLeague, slug)
	}
	return league, nil
}

// LeagueSlugs returns every registered slug in alphabetical order.
func LeagueSlugs() []string {
	slugs := make([]string, 0, len(LeagueRegistry))
	for slug := range LeagueRegistry {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// CurrentSeason returns the season whose summer window opens in the year of
// now. Seasons are named by the year they begin, so January to May still
// belongs to the previous year's season.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.June {
		return now.Year()
	}
	return now.Year() - 1
}
