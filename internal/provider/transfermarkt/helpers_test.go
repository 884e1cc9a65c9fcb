package transfermarkt

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRow describes one transfer row of a synthetic page.
type testRow struct {
	name        string
	id          string // empty omits the profile link
	age         string
	nationality string
	position    string
	short       string
	marketValue string
	club        string
	country     string
	fee         string
}

// testClub is one club block of a synthetic page. Nil slices render the
// "No arrivals"/"No departures" placeholder row.
type testClub struct {
	name string
	in   []testRow
	out  []testRow
}

func renderPage(clubs ...testClub) []byte {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"large-8 columns\">\n")
	for _, c := range clubs {
		fmt.Fprintf(&b, "<div class=\"box\"><h2 class=\"content-box-headline content-box-headline--logo\">\n <a href=\"/club\">%s</a>\n</h2>\n", c.name)
		renderTable(&b, "In", "Left", c.in, "No arrivals")
		renderTable(&b, "Out", "Joined", c.out, "No departures")
		b.WriteString("</div>\n")
	}
	b.WriteString("</div></body></html>")
	return []byte(b.String())
}

func renderTable(b *strings.Builder, playerLabel, clubLabel string, rows []testRow, placeholder string) {
	b.WriteString("<div class=\"responsive-table\"><table>\n<thead><tr>")
	fmt.Fprintf(b, "<th>%s</th><th>Age</th><th>Nat.</th><th>Position</th><th>Pos</th><th>Market value</th><th colspan=\"2\">%s</th><th>Fee</th>", playerLabel, clubLabel)
	b.WriteString("</tr></thead>\n<tbody>\n")
	if len(rows) == 0 {
		fmt.Fprintf(b, "<tr><td colspan=\"9\">%s</td></tr>\n", placeholder)
	}
	for _, r := range rows {
		b.WriteString(renderRow(r))
	}
	b.WriteString("</tbody></table></div>\n")
}

func renderRow(r testRow) string {
	player := fmt.Sprintf("<span class=\"hide-for-small\">%s</span>", r.name)
	if r.id != "" {
		player = fmt.Sprintf(
			"<table class=\"inline-table\"><tr><td><img title=\"%[1]s\"></td><td><span class=\"hide-for-small\"><a href=\"/%[2]s/profil/spieler/%[3]s\">%[1]s</a></span></td></tr></table>",
			r.name, strings.ToLower(strings.ReplaceAll(r.name, " ", "-")), r.id)
	}
	return fmt.Sprintf("<tr>"+
		"<td>%s</td>"+
		"<td class=\"zentriert\">%s</td>"+
		"<td><img class=\"flaggenrahmen\" title=\"%s\"></td>"+
		"<td>%s</td>"+
		"<td>%s</td>"+
		"<td class=\"rechts\">%s</td>"+
		"<td><img title=\"%s\"></td>"+
		"<td><a href=\"/dealing\">%s</a> <img class=\"flaggenrahmen\" title=\"%s\"></td>"+
		"<td class=\"rechts\"><a href=\"/transfer\">%s</a></td>"+
		"</tr>\n",
		player, r.age, r.nationality, r.position, r.short, r.marketValue, r.club, r.club, r.country, r.fee)
}

var johnDoe = testRow{
	name: "John Doe", id: "12345", age: "24", nationality: "England",
	position: "Centre-Forward", short: "CF", marketValue: "€4.00m",
	club: "Rival FC", country: "Spain", fee: "€5m",
}
