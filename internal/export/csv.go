// Package export writes transfer records to CSV files, one per league
// season.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/albapepper/scoracle-transfers/internal/provider"
)

// Path returns dest/<league slug with underscores>/<season>.csv.
func Path(dest, leagueSlug string, season int) string {
	dir := strings.ReplaceAll(leagueSlug, "-", "_")
	return filepath.Join(dest, dir, strconv.Itoa(season)+".csv")
}

// WriteCSV writes a header row of provider.Columns followed by one row per
// record.
func WriteCSV(w io.Writer, records []provider.Transfer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(provider.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveSeason writes records to Path(dest, leagueSlug, season), creating
// directories as needed, and returns the path written. The file is
// written to a temporary name first so readers never see a partial file.
func SaveSeason(dest, leagueSlug string, season int, records []provider.Transfer) (string, error) {
	path := Path(dest, leagueSlug, season)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename into place: %w", err)
	}
	return path, nil
}

// CSVSink saves each batch as a season file under Dest.
type CSVSink struct {
	Dest   string
	Logger *slog.Logger
}

// Save writes the batch's records to its season file.
func (s CSVSink) Save(_ context.Context, batch provider.Batch) error {
	path, err := SaveSeason(s.Dest, batch.League.Slug, batch.Season, batch.Records)
	if err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Saved transfers", "path", path, "records", len(batch.Records))
	return nil
}
