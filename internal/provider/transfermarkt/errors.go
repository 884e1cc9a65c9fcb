package transfermarkt

import (
	"errors"
	"fmt"

	"github.com/albapepper/scoracle-transfers/internal/config"
)

// Sentinels for errors.Is. Every error the package returns wraps exactly one.
var (
	ErrInvalidSeason    = errors.New("invalid season")
	ErrInvalidWindow    = errors.New("invalid window")
	ErrUnknownLeague    = config.ErrUnknownLeague
	ErrFetchExhausted   = errors.New("fetch attempts exhausted")
	ErrUnrecognizedPage = errors.New("page structure not recognized")
	ErrDataIntegrity    = errors.New("data integrity")
	ErrCurrency         = errors.New("unparseable amount")
)

// FetchExhaustedError reports that every attempt to load URL failed.
// Last is kept for logging; it is not what the error reports.
type FetchExhaustedError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed for %s", e.Attempts, e.URL)
}

func (e *FetchExhaustedError) Is(target error) bool {
	return target == ErrFetchExhausted
}

// StructureError reports a page that loaded but did not match the expected
// template.
type StructureError struct {
	URL    string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrUnrecognizedPage, e.Reason, e.URL)
}

func (e *StructureError) Unwrap() error {
	return ErrUnrecognizedPage
}

func structuref(url, format string, args ...interface{}) error {
	return &StructureError{URL: url, Reason: fmt.Sprintf(format, args...)}
}

// DataError reports a cell that could not be coerced to its column type.
// Row is the 0-based row index within the club's table for Movement.
type DataError struct {
	Club     string
	Movement string
	Row      int
	Field    string
	Value    string
	Err      error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: club %q %s row %d: %s=%q: %v",
		ErrDataIntegrity, e.Club, e.Movement, e.Row, e.Field, e.Value, e.Err)
}

func (e *DataError) Is(target error) bool {
	return target == ErrDataIntegrity
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// --------------------------------------------------------------------------
// Classification
// --------------------------------------------------------------------------

// ErrorKind groups errors by how a caller should react to them.
type ErrorKind int

const (
	KindUnknown    ErrorKind = iota
	KindValidation           // bad input, never retry
	KindFetch                // retry budget exhausted, may retry later
	KindStructure            // site layout changed, abort
	KindData                 // corrupt upstream cell, abort
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFetch:
		return "fetch"
	case KindStructure:
		return "structure"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// Classify maps err onto its ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidSeason), errors.Is(err, ErrInvalidWindow), errors.Is(err, ErrUnknownLeague):
		return KindValidation
	case errors.Is(err, ErrFetchExhausted):
		return KindFetch
	case errors.Is(err, ErrUnrecognizedPage):
		return KindStructure
	case errors.Is(err, ErrDataIntegrity):
		return KindData
	default:
		return KindUnknown
	}
}
