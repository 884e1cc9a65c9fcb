package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/albapepper/scoracle-transfers/internal/backfill"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
)

func renderLeagues(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Slug", "Code", "Name"})
	for _, slug := range config.LeagueSlugs() {
		l := config.LeagueRegistry[slug]
		t.AppendRow(table.Row{l.Slug, l.Code, l.Name})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// clubTotals aggregates one club's arrivals and departures.
type clubTotals struct {
	club   string
	in     int
	out    int
	loans  int
	spend  float64
	income float64
}

func (c clubTotals) net() float64 { return c.spend - c.income }

// summarizeClubs folds records into per-club totals ordered by net spend,
// highest first, then by club name.
func summarizeClubs(records []provider.Transfer) []clubTotals {
	byClub := make(map[string]*clubTotals)
	for _, r := range records {
		c, ok := byClub[r.Club]
		if !ok {
			c = &clubTotals{club: r.Club}
			byClub[r.Club] = c
		}
		if r.Loan() {
			c.loans++
		}
		switch r.Movement {
		case provider.MovementIn:
			c.in++
			c.spend += r.Fee
		case provider.MovementOut:
			c.out++
			c.income += r.Fee
		}
	}

	totals := make([]clubTotals, 0, len(byClub))
	for _, c := range byClub {
		totals = append(totals, *c)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].net() != totals[j].net() {
			return totals[i].net() > totals[j].net()
		}
		return totals[i].club < totals[j].club
	})
	return totals
}

func renderClubTotals(w io.Writer, records []provider.Transfer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Club", "In", "Out", "Loans", "Spend", "Income", "Net"})

	var in, out int
	var spend, income float64
	for _, c := range summarizeClubs(records) {
		t.AppendRow(table.Row{c.club, c.in, c.out, c.loans, money(c.spend), money(c.income), money(c.net())})
		in += c.in
		out += c.out
		spend += c.spend
		income += c.income
	}
	t.AppendFooter(table.Row{"Total", in, out, "", money(spend), money(income), money(spend - income)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderBackfill(w io.Writer, result backfill.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"League", "Season", "Records", "Status", "Duration"})
	for _, j := range result.Jobs {
		status := "ok"
		if !j.Success {
			status = "failed (" + j.Kind + ")"
		}
		t.AppendRow(table.Row{j.League, j.Season, j.Records, status, j.Duration.Round(time.Millisecond)})
	}
	t.AppendFooter(table.Row{"", "", result.Records, fmt.Sprintf("%d/%d ok", result.Succeeded, result.JobsFound), result.Duration.Round(time.Second)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// money formats a euro amount in millions, matching the site's notation.
func money(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("€%.2fm", v/1_000_000)
}
