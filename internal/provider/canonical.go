// Package provider defines the canonical transfer record every scrape
// normalizes into. The scraper produces it; the CSV exporter and the seeder
// consume it.
package provider

import (
	"strconv"

	"github.com/albapepper/scoracle-transfers/internal/config"
)

// Movement directions relative to the club.
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// Window names as they appear in output records.
const (
	WindowSummer = "summer"
	WindowWinter = "winter"
)

// Transfer is one player movement in or out of one club during one window.
// MarketValue is nil when the site lists it as unknown; Fee is always set.
type Transfer struct {
	Season         int      `json:"season"`
	League         string   `json:"league"`
	Club           string   `json:"club"`
	Window         string   `json:"window"`
	Movement       string   `json:"movement"`
	PlayerName     string   `json:"player_name"`
	PlayerID       int      `json:"player_id"`
	Age            int      `json:"age"`
	Nationality    string   `json:"nationality"`
	Position       string   `json:"position"`
	PositionShort  string   `json:"position_short"`
	MarketValue    *float64 `json:"market_value"`
	DealingClub    string   `json:"dealing_club"`
	DealingCountry string   `json:"dealing_country"`
	Fee            float64  `json:"fee"`
	IsLoan         int      `json:"is_loan"`
}

// Columns is the output field order used by every tabular sink. The short
// position column keeps the header "pos" used by existing season files.
var Columns = []string{
	"season", "league", "club", "window", "movement",
	"player_name", "player_id", "age", "nationality", "position", "pos",
	"market_value", "dealing_club", "dealing_country", "fee", "is_loan",
}

// Loan reports whether the transfer was a loan.
func (t Transfer) Loan() bool {
	return t.IsLoan == 1
}

// Row renders the record as strings in Columns order. An unknown market
// value renders as an empty cell.
func (t Transfer) Row() []string {
	marketValue := ""
	if t.MarketValue != nil {
		marketValue = formatAmount(*t.MarketValue)
	}
	return []string{
		strconv.Itoa(t.Season),
		t.League,
		t.Club,
		t.Window,
		t.Movement,
		t.PlayerName,
		strconv.Itoa(t.PlayerID),
		strconv.Itoa(t.Age),
		t.Nationality,
		t.Position,
		t.PositionShort,
		marketValue,
		t.DealingClub,
		t.DealingCountry,
		formatAmount(t.Fee),
		strconv.Itoa(t.IsLoan),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Batch is the result of scraping some windows of one league season. Sinks
// persist a batch as a unit; Windows names the windows it replaces.
type Batch struct {
	League  config.League
	Season  int
	Windows []string
	Records []Transfer
}
