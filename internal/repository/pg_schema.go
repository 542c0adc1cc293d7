package repository

import (
	"context"
	"database/sql"
)

// PGSchema creates the tables used by the Postgres repositories.
const PGSchema = `
CREATE TABLE IF NOT EXISTS diagnostic_items (
	id                  TEXT PRIMARY KEY,
	normative_reference TEXT NOT NULL DEFAULT '',
	applicable_level    TEXT NOT NULL,
	requirement_code    TEXT NOT NULL,
	requirement_title   TEXT NOT NULL DEFAULT '',
	description         TEXT NOT NULL,
	scoring_kind        TEXT NOT NULL,
	display_order       INTEGER NOT NULL DEFAULT 0,
	active              BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS diagnostic_answers (
	id          UUID PRIMARY KEY,
	session_id  UUID NOT NULL,
	user_id     TEXT NOT NULL,
	level       TEXT NOT NULL,
	item_id     TEXT NOT NULL REFERENCES diagnostic_items(id),
	score       SMALLINT CHECK (score BETWEEN 1 AND 5),
	note        TEXT NOT NULL DEFAULT '',
	answered_at TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, item_id)
);

CREATE INDEX IF NOT EXISTS diagnostic_answers_user_idx ON diagnostic_answers (user_id, created_at DESC);
`

// EnsurePGSchema applies PGSchema
func EnsurePGSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, PGSchema)
	return err
}
