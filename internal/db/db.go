// Package db provides a pgxpool-based connection pool with schema
// migration, prepared statement registration and health checking.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-transfers/internal/config"
)

//go:embed schema.sql
var schema string

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New applies the schema, then creates and validates a connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Statements reference the transfers table, so it must exist before
	// the first pooled connection prepares them.
	if err := Migrate(ctx, poolCfg.ConnConfig); err != nil {
		return nil, err
	}

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Migrate applies the embedded schema over a single connection. Every
// statement is idempotent.
func Migrate(ctx context.Context, connCfg *pgx.ConnConfig) error {
	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// transferJSON renders a transfers row with the same keys as
// provider.Transfer.
const transferJSON = `json_build_object(
	'season', t.season, 'league', t.league, 'club', t.club,
	'window', t.transfer_window, 'movement', t.movement,
	'player_name', t.player_name, 'player_id', t.player_id, 'age', t.age,
	'nationality', t.nationality, 'position', t.position,
	'position_short', t.position_short, 'market_value', t.market_value,
	'dealing_club', t.dealing_club, 'dealing_country', t.dealing_country,
	'fee', t.fee, 'is_loan', t.is_loan)`

// Prepared statement names used outside this package.
const (
	StmtHealthCheck   = "health_check"
	StmtTransfers     = "api_transfers"
	StmtClubSummaries = "api_club_summaries"
	StmtLeagueSeasons = "api_league_seasons"
)

// registerPreparedStatements registers all statements the API and ingestion
// layers use. Filter parameters are nullable: NULL matches everything.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		StmtHealthCheck: "SELECT 1",

		// API: transfers of one league season ($1 code, $2 season, $3 window, $4 club, $5 movement)
		StmtTransfers: `SELECT COALESCE(json_agg(` + transferJSON + `
				ORDER BY t.club, t.movement, t.transfer_window, t.player_name), '[]'::json)
			FROM ` + config.TransfersTable + ` t
			WHERE t.league_code = $1 AND t.season = $2
				AND ($3::text IS NULL OR t.transfer_window = $3)
				AND ($4::text IS NULL OR t.club = $4)
				AND ($5::text IS NULL OR t.movement = $5)`,

		// API: per-club money flow ($1 code, $2 season, $3 window)
		StmtClubSummaries: `SELECT COALESCE(json_agg(c ORDER BY c.net_spend DESC, c.club), '[]'::json)
			FROM (
				SELECT club,
					SUM(fee) FILTER (WHERE movement = 'in')  AS spend,
					SUM(fee) FILTER (WHERE movement = 'out') AS income,
					COALESCE(SUM(fee) FILTER (WHERE movement = 'in'), 0)
						- COALESCE(SUM(fee) FILTER (WHERE movement = 'out'), 0) AS net_spend,
					COUNT(*) FILTER (WHERE movement = 'in')  AS arrivals,
					COUNT(*) FILTER (WHERE movement = 'out') AS departures,
					COUNT(*) FILTER (WHERE is_loan = 1)      AS loans
				FROM ` + config.TransfersTable + `
				WHERE league_code = $1 AND season = $2
					AND ($3::text IS NULL OR transfer_window = $3)
				GROUP BY club
			) c`,

		// API: seasons stored for a league ($1 code)
		StmtLeagueSeasons: `SELECT COALESCE(array_agg(DISTINCT season ORDER BY season), '{}')
			FROM ` + config.TransfersTable + ` WHERE league_code = $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
