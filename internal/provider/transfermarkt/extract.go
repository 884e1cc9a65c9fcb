package transfermarkt

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-transfers/internal/provider"
)

// Selectors for the transfer summary template.
const (
	selectClubHeading = "h2.content-box-headline--logo"
	selectTableBox    = "div.responsive-table"
	selectPlayerLink  = "span.hide-for-small a"
)

// countryLabel is inserted before the last header label. The dealing club's
// header spans both the crest cell and the name+flag cell, so the flag
// column has no label of its own.
const countryLabel = "Country"

// rowWidth is the number of direct td cells in a transfer row.
const rowWidth = 9

// --------------------------------------------------------------------------
// Column contract
// --------------------------------------------------------------------------

// cellStrategy says how a cell's value is read.
type cellStrategy int

const (
	strategyText cellStrategy = iota
	strategyPlayerLink
	strategyImageTitle
	strategyImageTitleOrText
)

// column is one position of the contract with the label each table
// direction shows for it.
type column struct {
	inLabel  string
	outLabel string
	strategy cellStrategy
}

func (c column) label(movement string) string {
	if movement == provider.MovementOut {
		return c.outLabel
	}
	return c.inLabel
}

var columnContract = [rowWidth]column{
	{"In", "Out", strategyPlayerLink},
	{"Age", "Age", strategyText},
	{"Nat.", "Nat.", strategyImageTitle},
	{"Position", "Position", strategyText},
	{"Pos", "Pos", strategyText},
	{"Market value", "Market value", strategyText},
	{"Left", "Joined", strategyImageTitleOrText},
	{countryLabel, countryLabel, strategyImageTitle},
	{"Fee", "Fee", strategyText},
}

// --------------------------------------------------------------------------
// Extracted types
// --------------------------------------------------------------------------

// Cell is one extracted value. For the player cell, Value is the display
// name, PlayerID the last path segment of the profile link, and Linked
// whether that link was present at all.
type Cell struct {
	Value    string
	PlayerID string
	Linked   bool
}

// RawRow is one transfer row in contract order.
type RawRow []Cell

// RawTable is one direction's table for one club.
type RawTable struct {
	Movement string
	Labels   []string
	Rows     []RawRow
}

// ClubBlock pairs a club's incoming and outgoing tables. Position is the
// club's 0-based order on the page.
type ClubBlock struct {
	Club     string
	Position int
	In       RawTable
	Out      RawTable
}

// --------------------------------------------------------------------------
// Extract
// --------------------------------------------------------------------------

// Extract parses a transfer summary page into one block per club. Any
// deviation from the expected template is a *StructureError.
func Extract(page *RawPage) ([]ClubBlock, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, structuref(page.URL, "parse markup: %v", err)
	}

	var clubs []string
	doc.Find(selectClubHeading).Each(func(_ int, s *goquery.Selection) {
		clubs = append(clubs, collapse(s.Text()))
	})

	var tables []*goquery.Selection
	doc.Find(selectTableBox).Each(func(_ int, s *goquery.Selection) {
		if t := s.Find("table").First(); t.Length() > 0 {
			tables = append(tables, t)
		}
	})

	switch {
	case len(clubs) == 0:
		return nil, structuref(page.URL, "no club headings")
	case len(tables) == 0:
		return nil, structuref(page.URL, "no transfer tables")
	case len(tables)%2 != 0:
		return nil, structuref(page.URL, "odd table count %d", len(tables))
	case len(tables)/2 != len(clubs):
		return nil, structuref(page.URL, "%d club headings for %d table pairs", len(clubs), len(tables)/2)
	}

	blocks := make([]ClubBlock, 0, len(clubs))
	for i, club := range clubs {
		in, err := extractTable(page.URL, club, provider.MovementIn, tables[2*i])
		if err != nil {
			return nil, err
		}
		out, err := extractTable(page.URL, club, provider.MovementOut, tables[2*i+1])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, ClubBlock{Club: club, Position: i, In: in, Out: out})
	}
	return blocks, nil
}

func extractTable(pageURL, club, movement string, table *goquery.Selection) (RawTable, error) {
	labels := headerLabels(table)
	if err := checkHeader(labels, movement); err != nil {
		return RawTable{}, structuref(pageURL, "club %q %s table: %v", club, movement, err)
	}

	raw := RawTable{Movement: movement, Labels: labels}
	var rowErr error
	bodyRows(table).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 && tr.ChildrenFiltered("th").Length() > 0 {
			return true
		}
		// A single spanning cell marks "no transfers"; nothing follows it.
		if cells.Length() <= 1 {
			return false
		}
		if cells.Length() != rowWidth {
			rowErr = structuref(pageURL, "club %q %s row %d has %d cells, want %d",
				club, movement, len(raw.Rows), cells.Length(), rowWidth)
			return false
		}
		row := make(RawRow, rowWidth)
		cells.Each(func(j int, td *goquery.Selection) {
			row[j] = readCell(td, columnContract[j].strategy)
		})
		raw.Rows = append(raw.Rows, row)
		return true
	})
	if rowErr != nil {
		return RawTable{}, rowErr
	}
	return raw, nil
}

// headerLabels reads the th texts and inserts the synthetic country label
// before the last one.
func headerLabels(table *goquery.Selection) []string {
	ths := table.ChildrenFiltered("thead").Find("th")
	if ths.Length() == 0 {
		ths = table.Find("tr").First().ChildrenFiltered("th")
	}
	labels := ths.Map(func(_ int, s *goquery.Selection) string {
		return collapse(s.Text())
	})
	if len(labels) == 0 {
		return labels
	}
	last := len(labels) - 1
	out := make([]string, 0, len(labels)+1)
	out = append(out, labels[:last]...)
	out = append(out, countryLabel, labels[last])
	return out
}

func checkHeader(labels []string, movement string) error {
	if len(labels) != rowWidth {
		return fmt.Errorf("header has %d labels %q, want %d", len(labels), labels, rowWidth)
	}
	for i, col := range columnContract {
		if want := col.label(movement); labels[i] != want {
			return fmt.Errorf("header label %d is %q, want %q", i, labels[i], want)
		}
	}
	return nil
}

// bodyRows returns the table's own rows, skipping rows of nested tables.
func bodyRows(table *goquery.Selection) *goquery.Selection {
	rows := table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	if rows.Length() == 0 {
		rows = table.ChildrenFiltered("tr")
	}
	return rows
}

func readCell(td *goquery.Selection, strategy cellStrategy) Cell {
	switch strategy {
	case strategyPlayerLink:
		return readPlayer(td)
	case strategyImageTitle:
		return Cell{Value: imageTitle(td)}
	case strategyImageTitleOrText:
		if title := imageTitle(td); title != "" {
			return Cell{Value: title}
		}
		return Cell{Value: collapse(td.Text())}
	default:
		return Cell{Value: collapse(td.Text())}
	}
}

func readPlayer(td *goquery.Selection) Cell {
	// Only the profile link names the player; other anchors in the cell
	// point at clubs or transfer details.
	link := td.Find(selectPlayerLink).First()
	href, ok := link.Attr("href")
	if !ok {
		return Cell{}
	}
	return Cell{
		Value:    collapse(link.Text()),
		PlayerID: lastSegment(href),
		Linked:   true,
	}
}

func imageTitle(td *goquery.Selection) string {
	return strings.TrimSpace(td.Find("img").First().AttrOr("title", ""))
}

// lastSegment returns the final non-empty path segment of href.
func lastSegment(href string) string {
	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
