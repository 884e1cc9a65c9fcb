// Package seed writes scraped transfer records to Postgres.
package seed

import "fmt"

// SeedResult tracks the row counts of one replacement.
type SeedResult struct {
	TransfersUpserted int
	TransfersDeleted  int
}

// Summary returns a human-readable summary of the seed operation.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf("transfers=%d deleted=%d", r.TransfersUpserted, r.TransfersDeleted)
}
