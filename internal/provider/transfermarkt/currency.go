package transfermarkt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// unitScales is the closed set of amount suffixes.
var unitScales = map[string]float64{
	"":  1,
	"m": 1_000_000,
	"k": 1_000,
}

// ParseCurrency parses amounts such as "€1.5m", "€750k" or "€250". "-"
// means unknown and returns nil.
func ParseCurrency(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return nil, nil
	}

	rest := s
	if r, size := utf8.DecodeRuneInString(s); r != utf8.RuneError && !unicode.IsDigit(r) {
		rest = s[size:]
	}

	number, unit := splitAmount(strings.TrimSpace(rest))
	if number == "" {
		return nil, fmt.Errorf("%w: %q has no number", ErrCurrency, s)
	}
	scale, ok := unitScales[strings.ToLower(unit)]
	if !ok {
		return nil, fmt.Errorf("%w: %q has unknown unit %q", ErrCurrency, s, unit)
	}
	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCurrency, s, err)
	}
	if scale != 1 {
		v = clean(v * scale)
	}
	return &v, nil
}

// clean removes float noise from a scaled amount ("1.15m" is not
// 1149999.9999999998) while keeping real fractions such as 1234.5.
func clean(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// splitAmount splits s into its leading run of digits and dots and the
// remainder.
func splitAmount(s string) (number, unit string) {
	i := strings.IndexFunc(s, func(r rune) bool {
		return r != '.' && !unicode.IsDigit(r)
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// FeeAndLoanStatus derives the fee and the loan flag from a raw fee cell.
// The fee is always resolved to a number.
func FeeAndLoanStatus(s string) (float64, bool, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	switch {
	case text == "-" || text == "?" || text == "":
		return 0, false, nil
	case text == "free transfer":
		return 0, false, nil
	case text == "loan transfer" || strings.HasPrefix(text, "end of loan"):
		return 0, true, nil
	case strings.HasPrefix(text, "loan fee"):
		colon := strings.LastIndex(text, ":")
		if colon < 0 {
			return 0, true, nil
		}
		fee, err := feeAmount(text[colon+1:])
		return fee, true, err
	default:
		fee, err := feeAmount(text)
		return fee, false, err
	}
}

// feeAmount parses a fee, resolving unknown amounts to 0.
func feeAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "?" {
		return 0, nil
	}
	v, err := ParseCurrency(s)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return *v, nil
}
