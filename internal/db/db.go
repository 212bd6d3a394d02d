// Package db provides a pgxpool-based connection pool with schema setup and
// prepared statement registration.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shrutikmk/startgg-match-insights/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool. The schema is ensured
// on a throwaway connection first, because the per-connection prepared
// statements reference the run tables.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if err := ensureSchema(ctx, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
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

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// ensureSchema creates the run tables when they do not exist yet.
func ensureSchema(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	for _, ddl := range schemaDDL {
		if _, err := conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// registerPreparedStatements registers all statements the API and store
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Store: run insertion (full bundle stored as JSONB passthrough)
		"insert_run": `INSERT INTO runs (mode, event_count, set_count, ts_after, ts_before, dropped_events, failed_sets, bundle)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		"insert_run_event": `INSERT INTO run_events (run_id, url, composite_slug, tournament_name, event_date, num_entrants, set_count, player_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		"insert_run_player": `INSERT INTO run_players (run_id, player, wins, losses, total_sets, attendance, rating)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		"insert_run_rating": `INSERT INTO run_ratings (run_id, player, rating)
			VALUES ($1, $2, $3)`,

		// Store: retention
		"prune_runs": `DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT $1)`,

		// API: run lookups (Postgres returns complete JSON; handlers pass
		// raw bytes through)
		"latest_run_id":    "SELECT id FROM runs ORDER BY id DESC LIMIT 1",
		"run_bundle":       "SELECT bundle FROM runs WHERE id = $1",
		"run_metadata":     "SELECT bundle->'metadata' FROM runs WHERE id = $1",
		"run_events_json":  "SELECT bundle->'events' FROM runs WHERE id = $1",
		"run_players_json": "SELECT bundle->'players' FROM runs WHERE id = $1",
		"run_ratings_json": "SELECT bundle->'ratings' FROM runs WHERE id = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
