package transfermarkt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
)

// Canonical field names produced by renaming.
const (
	fieldPlayer         = "player"
	fieldAge            = "age"
	fieldNationality    = "nationality"
	fieldPosition       = "position"
	fieldPositionShort  = "position_short"
	fieldMarketValue    = "market_value"
	fieldDealingClub    = "dealing_club"
	fieldDealingCountry = "dealing_country"
	fieldFee            = "fee"
)

// sharedRenames are the labels both directions use.
var sharedRenames = map[string]string{
	"Age":          fieldAge,
	"Nat.":         fieldNationality,
	"Position":     fieldPosition,
	"Pos":          fieldPositionShort,
	"Market value": fieldMarketValue,
	countryLabel:   fieldDealingCountry,
	"Fee":          fieldFee,
}

// renames maps each direction's header labels to canonical fields.
var renames = map[string]map[string]string{
	provider.MovementIn:  withShared(map[string]string{"In": fieldPlayer, "Left": fieldDealingClub}),
	provider.MovementOut: withShared(map[string]string{"Out": fieldPlayer, "Joined": fieldDealingClub}),
}

func withShared(m map[string]string) map[string]string {
	for k, v := range sharedRenames {
		m[k] = v
	}
	return m
}

// movementRank and windowRank give the output ordering.
var (
	movementRank = map[string]int{provider.MovementIn: 0, provider.MovementOut: 1}
	windowRank   = map[string]int{provider.WindowSummer: 0, provider.WindowWinter: 1}
)

// Normalize turns extracted blocks into transfer records for one season and
// window of league. It returns nothing if any row fails.
func Normalize(blocks []ClubBlock, season int, window Window, league config.League) ([]provider.Transfer, error) {
	var records []provider.Transfer
	for _, block := range blocks {
		for _, table := range []RawTable{block.In, block.Out} {
			fields, err := renameLabels(block.Club, table)
			if err != nil {
				return nil, err
			}
			for i, row := range table.Rows {
				record, err := normalizeRow(block.Club, table.Movement, i, fields, row)
				if err != nil {
					return nil, err
				}
				record.Season = season
				record.League = league.Name
				record.Window = window.Name()
				records = append(records, record)
			}
		}
	}
	SortTransfers(records)
	return records, nil
}

// renameLabels maps the table's labels to canonical fields by position.
func renameLabels(club string, table RawTable) ([]string, error) {
	lookup := renames[table.Movement]
	if lookup == nil {
		return nil, &StructureError{Reason: fmt.Sprintf("club %q: unknown movement %q", club, table.Movement)}
	}
	fields := make([]string, len(table.Labels))
	for i, label := range table.Labels {
		field, ok := lookup[label]
		if !ok {
			return nil, &StructureError{Reason: fmt.Sprintf("club %q %s table: unmapped label %q", club, table.Movement, label)}
		}
		fields[i] = field
	}
	return fields, nil
}

func normalizeRow(club, movement string, index int, fields []string, row RawRow) (provider.Transfer, error) {
	dataErr := func(field, value string, err error) error {
		return &DataError{Club: club, Movement: movement, Row: index, Field: field, Value: value, Err: err}
	}
	if len(row) != len(fields) {
		return provider.Transfer{}, dataErr("row", strconv.Itoa(len(row)), fmt.Errorf("want %d cells", len(fields)))
	}

	record := provider.Transfer{Club: club, Movement: movement}
	for i, field := range fields {
		cell := row[i]
		switch field {
		case fieldPlayer:
			if !cell.Linked {
				return provider.Transfer{}, dataErr("player_id", "", fmt.Errorf("no profile link"))
			}
			id, err := strconv.Atoi(cell.PlayerID)
			if err != nil {
				return provider.Transfer{}, dataErr("player_id", cell.PlayerID, err)
			}
			record.PlayerName = cell.Value
			record.PlayerID = id
		case fieldAge:
			age, err := parseAge(cell.Value)
			if err != nil {
				return provider.Transfer{}, dataErr(fieldAge, cell.Value, err)
			}
			record.Age = age
		case fieldNationality:
			record.Nationality = cell.Value
		case fieldPosition:
			record.Position = cell.Value
		case fieldPositionShort:
			record.PositionShort = cell.Value
		case fieldMarketValue:
			v, err := ParseCurrency(cell.Value)
			if err != nil {
				return provider.Transfer{}, dataErr(fieldMarketValue, cell.Value, err)
			}
			record.MarketValue = v
		case fieldDealingClub:
			record.DealingClub = cell.Value
		case fieldDealingCountry:
			record.DealingCountry = cell.Value
		case fieldFee:
			fee, isLoan, err := FeeAndLoanStatus(cell.Value)
			if err != nil {
				return provider.Transfer{}, dataErr(fieldFee, cell.Value, err)
			}
			record.Fee = fee
			if isLoan {
				record.IsLoan = 1
			}
		}
	}
	return record, nil
}

// parseAge reads the leading integer of an age cell. Some layouts append
// the age at the time of the move in parentheses.
func parseAge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " ("); i > 0 {
		s = s[:i]
	}
	return strconv.Atoi(s)
}

// SortTransfers orders records by club, then movement, then window. The
// sort is stable so rows keep their page order within a group.
func SortTransfers(records []provider.Transfer) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Club != b.Club {
			return a.Club < b.Club
		}
		if a.Movement != b.Movement {
			return movementRank[a.Movement] < movementRank[b.Movement]
		}
		return windowRank[a.Window] < windowRank[b.Window]
	})
}
