package db

// schemaDDL creates the run tables. Idempotent; applied before the pool's
// prepared statements are registered.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id             BIGSERIAL PRIMARY KEY,
		mode           TEXT NOT NULL,
		event_count    INT NOT NULL,
		set_count      INT NOT NULL,
		ts_after       BIGINT,
		ts_before      BIGINT,
		dropped_events INT NOT NULL DEFAULT 0,
		failed_sets    INT NOT NULL DEFAULT 0,
		bundle         JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS run_events (
		id              BIGSERIAL PRIMARY KEY,
		run_id          BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url             TEXT NOT NULL,
		composite_slug  TEXT NOT NULL,
		tournament_name TEXT,
		event_date      TEXT,
		num_entrants    INT NOT NULL DEFAULT 0,
		set_count       INT NOT NULL DEFAULT 0,
		player_count    INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS run_players (
		id         BIGSERIAL PRIMARY KEY,
		run_id     BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		player     TEXT NOT NULL,
		wins       INT NOT NULL,
		losses     INT NOT NULL,
		total_sets INT NOT NULL,
		attendance INT NOT NULL,
		rating     DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS run_ratings (
		id     BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		player TEXT NOT NULL,
		rating DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_run_players_run ON run_players(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_run_ratings_run ON run_ratings(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id)`,
}
