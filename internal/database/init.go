package database

import (
	"context"
	"fmt"

	"github.com/yourusername/derby-sim/internal/config"
)

// Schema creates the tables of the postgres backend. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS horses (
    id           UUID PRIMARY KEY,
    first_name   TEXT        NOT NULL,
    last_name    TEXT        NOT NULL DEFAULT '',
    team_id      TEXT        NOT NULL,
    age          INTEGER     NOT NULL,
    status       TEXT        NOT NULL,
    condition    INTEGER     NOT NULL,
    energy       INTEGER     NOT NULL,
    fatigue      INTEGER     NOT NULL DEFAULT 0,
    injury_weeks INTEGER     NOT NULL DEFAULT 0,
    potential    INTEGER     NOT NULL DEFAULT 0,
    current_ovr  INTEGER     NOT NULL DEFAULT 0,
    target_race  TEXT        NOT NULL DEFAULT '',
    profile      JSONB       NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_horses_team ON horses(team_id);

CREATE TABLE IF NOT EXISTS season_state (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    year       INTEGER     NOT NULL,
    week       INTEGER     NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS race_outcomes (
    id             UUID PRIMARY KEY,
    race_id        TEXT        NOT NULL DEFAULT '',
    race_name      TEXT        NOT NULL DEFAULT '',
    year           INTEGER     NOT NULL,
    week           INTEGER     NOT NULL,
    distance       INTEGER     NOT NULL,
    surface        TEXT        NOT NULL,
    cutoff_tripped BOOLEAN     NOT NULL DEFAULT FALSE,
    results        JSONB       NOT NULL,
    log            JSONB       NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_year_week ON race_outcomes(year, week);
`

// Initialize creates a connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies Schema
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
