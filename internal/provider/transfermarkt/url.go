package transfermarkt

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
)

// Query keys are the site's own (German) parameter names.
const (
	querySeason   = "saison_id"
	queryWindow   = "s_w"
	queryLoans    = "leihe"
	queryInternal = "intern"
)

// Loan filter values understood by the site.
const (
	loansExcluded           = 0
	loansWithoutLoanReturns = 3
)

// Window is the site's short code for a transfer window.
type Window string

const (
	Summer Window = "s"
	Winter Window = "w"
)

// ParseWindow accepts a short code or a full window name.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", provider.WindowSummer:
		return Summer, nil
	case "w", provider.WindowWinter:
		return Winter, nil
	default:
		return "", fmt.Errorf("%w: %q must be one of 's' or 'w'", ErrInvalidWindow, s)
	}
}

// Name expands the short code to the name used in output records.
func (w Window) Name() string {
	if w == Summer {
		return provider.WindowSummer
	}
	return provider.WindowWinter
}

func (w Window) valid() bool {
	return w == Summer || w == Winter
}

// ParseSeason parses a season year. Non-integral input such as "2020.5" is
// rejected rather than truncated.
func ParseSeason(s string) (int, error) {
	season, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q must be a year", ErrInvalidSeason, s)
	}
	if err := validateSeason(season); err != nil {
		return 0, err
	}
	return season, nil
}

func validateSeason(season int) error {
	if season < config.FirstSeason {
		return fmt.Errorf("%w: %d is before %d", ErrInvalidSeason, season, config.FirstSeason)
	}
	return nil
}

// Request identifies one transfer-window summary page.
type Request struct {
	League   config.League
	Season   int
	Window   Window
	Loans    bool
	Internal bool
}

// NewRequest builds a Request with the default filters: loans included
// (without loan returns), internal moves excluded.
func NewRequest(league config.League, season int, window Window) Request {
	return Request{League: league, Season: season, Window: window, Loans: true}
}

// Validate rejects requests that cannot name a real page.
func (r Request) Validate() error {
	if r.League.Slug == "" || r.League.Code == "" {
		return fmt.Errorf("%w: league slug and code are required", ErrUnknownLeague)
	}
	if err := validateSeason(r.Season); err != nil {
		return err
	}
	if !r.Window.valid() {
		return fmt.Errorf("%w: %q must be one of 's' or 'w'", ErrInvalidWindow, string(r.Window))
	}
	return nil
}

// BuildURL returns the canonical page address for req. It is a pure
// function of its inputs; query keys keep the site's order.
func BuildURL(baseURL string, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	loans := loansExcluded
	if req.Loans {
		loans = loansWithoutLoanReturns
	}
	internal := 0
	if req.Internal {
		internal = 1
	}

	params := [][2]string{
		{querySeason, strconv.Itoa(req.Season)},
		{queryWindow, string(req.Window)},
		{queryLoans, strconv.Itoa(loans)},
		{queryInternal, strconv.Itoa(internal)},
	}
	query := make([]string, 0, len(params))
	for _, kv := range params {
		query = append(query, url.QueryEscape(kv[0])+"="+url.QueryEscape(kv[1]))
	}

	return fmt.Sprintf("%s/%s/transfers/wettbewerb/%s/plus/?%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(req.League.Slug),
		url.PathEscape(req.League.Code),
		strings.Join(query, "&"),
	), nil
}
