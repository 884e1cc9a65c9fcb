package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/provider"
)

// execer is satisfied by *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const upsertTransferSQL = `
	INSERT INTO ` + config.TransfersTable + ` (
		league_code, season, transfer_window, club, movement, player_id,
		league, player_name, age, nationality, position, position_short,
		market_value, dealing_club, dealing_country, fee, is_loan
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	ON CONFLICT (league_code, season, transfer_window, club, movement, player_id) DO UPDATE SET
		league = EXCLUDED.league,
		player_name = EXCLUDED.player_name,
		age = EXCLUDED.age,
		nationality = EXCLUDED.nationality,
		position = EXCLUDED.position,
		position_short = EXCLUDED.position_short,
		market_value = EXCLUDED.market_value,
		dealing_club = EXCLUDED.dealing_club,
		dealing_country = EXCLUDED.dealing_country,
		fee = EXCLUDED.fee,
		is_loan = EXCLUDED.is_loan,
		updated_at = NOW()`

// UpsertTransfer writes one canonical transfer to the transfers table.
func UpsertTransfer(ctx context.Context, db execer, leagueCode string, t provider.Transfer) error {
	_, err := db.Exec(ctx, upsertTransferSQL, transferArgs(leagueCode, t)...)
	return err
}

// ChangeEvent is the payload published on config.TransfersChannel when a
// league season's windows are replaced.
type ChangeEvent struct {
	LeagueCode string   `json:"league_code"`
	Season     int      `json:"season"`
	Windows    []string `json:"windows"`
}

// ReplaceWindows deletes the stored rows of the given windows of a league
// season and inserts records in their place, all in one transaction. A
// failed row rolls back the whole replacement. Listeners on
// config.TransfersChannel are notified on commit.
func ReplaceWindows(ctx context.Context, pool *pgxpool.Pool, league config.League, season int, windows []string, records []provider.Transfer) (SeedResult, error) {
	var result SeedResult

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM `+config.TransfersTable+`
			WHERE league_code = $1 AND season = $2 AND transfer_window = ANY($3)`,
			league.Code, season, windows)
		if err != nil {
			return fmt.Errorf("delete stale rows: %w", err)
		}
		result.TransfersDeleted = int(tag.RowsAffected())

		for _, t := range records {
			if err := UpsertTransfer(ctx, tx, league.Code, t); err != nil {
				return fmt.Errorf("insert transfer %s %s player %d: %w", t.Club, t.Movement, t.PlayerID, err)
			}
			result.TransfersUpserted++
		}
		return notifyChange(ctx, tx, ChangeEvent{LeagueCode: league.Code, Season: season, Windows: windows})
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("replace %s %d: %w", league.Slug, season, err)
	}
	return result, nil
}

// Store persists scraped batches to Postgres.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Save replaces the batch's windows with its records.
func (s *Store) Save(ctx context.Context, batch provider.Batch) error {
	result, err := ReplaceWindows(ctx, s.pool, batch.League, batch.Season, batch.Windows, batch.Records)
	if err != nil {
		return err
	}
	s.logger.Info("Stored transfers",
		"league", batch.League.Slug, "season", batch.Season, "result", result.Summary())
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// notifyChange queues the event; Postgres delivers it when the transaction
// commits.
func notifyChange(ctx context.Context, db execer, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", config.TransfersChannel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", config.TransfersChannel, err)
	}
	return nil
}

func transferArgs(leagueCode string, t provider.Transfer) []any {
	return []any{
		leagueCode, t.Season, t.Window, t.Club, t.Movement, t.PlayerID,
		t.League, t.PlayerName, t.Age, nilEmpty(t.Nationality), nilEmpty(t.Position),
		nilEmpty(t.PositionShort), t.MarketValue, nilEmpty(t.DealingClub),
		nilEmpty(t.DealingCountry), t.Fee, t.IsLoan,
	}
}

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
