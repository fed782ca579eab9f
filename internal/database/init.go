package database

import (
	"context"
	"fmt"
)

// schema is the picks table definition. The store is deliberately plain row
// storage: no uniqueness constraint on game identity (the application layer
// deduplicates) and no cross-row transaction use.
const schema = `
CREATE TABLE IF NOT EXISTS picks (
	id                 UUID PRIMARY KEY,
	home_team          TEXT NOT NULL,
	away_team          TEXT NOT NULL,
	week               INT NOT NULL,
	kickoff            TIMESTAMPTZ,
	home_score         INT,
	away_score         INT,
	home_moneyline     DOUBLE PRECISION NOT NULL DEFAULT 0,
	away_moneyline     DOUBLE PRECISION NOT NULL DEFAULT 0,
	spread_odds        DOUBLE PRECISION NOT NULL DEFAULT 0,
	over_odds          DOUBLE PRECISION NOT NULL DEFAULT 0,
	under_odds         DOUBLE PRECISION NOT NULL DEFAULT 0,
	spread_line        DOUBLE PRECISION,
	total_line         DOUBLE PRECISION,
	moneyline_pick     TEXT NOT NULL DEFAULT '',
	spread_pick        TEXT NOT NULL DEFAULT '',
	total_pick         TEXT NOT NULL DEFAULT '',
	confidence         DOUBLE PRECISION NOT NULL DEFAULT 0,
	result             TEXT NOT NULL DEFAULT 'pending',
	ats_result         TEXT NOT NULL DEFAULT 'pending',
	ou_result          TEXT NOT NULL DEFAULT 'pending',
	moneyline_edge     DOUBLE PRECISION NOT NULL DEFAULT 0,
	spread_edge        DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_edge         DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_home_win       DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_away_win       DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_favorite_cover DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_underdog_cover DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_over           DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_under          DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_picks_week ON picks (week);
CREATE INDEX IF NOT EXISTS idx_picks_created_at ON picks (created_at);
`

// InitSchema creates the picks table and indexes if they do not exist
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
