package store

import (
	"context"
	"fmt"
)

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1

// migrate runs database migrations.
func (s *Store) migrate(ctx context.Context) error {
	steps := []struct {
		name   string
		schema string
	}{
		{"favourites", schemaFavourites},
		{"roles", schemaRoles},
		{"shifts", schemaShifts},
		{"messages", schemaMessages},
		{"parse_failures", schemaParseFailures},
		{"metadata", schemaMetadata},
	}

	for _, step := range steps {
		if _, err := s.db.ExecContext(ctx, step.schema); err != nil {
			return fmt.Errorf("create %s tables: %w", step.name, err)
		}
	}
	return nil
}

const schemaFavourites = `
CREATE TABLE IF NOT EXISTS favourites (
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	event_id   INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (user_id, kind, event_id)
);

CREATE INDEX IF NOT EXISTS idx_favourites_user ON favourites(user_id, kind);
`

const schemaRoles = `
CREATE TABLE IF NOT EXISTS roles (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS role_interest (
	user_id    TEXT NOT NULL,
	role_id    INTEGER NOT NULL REFERENCES roles(id),
	interested INTEGER NOT NULL DEFAULT 0,
	trained    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, role_id)
);
`

const schemaShifts = `
CREATE TABLE IF NOT EXISTS shifts (
	id         INTEGER PRIMARY KEY,
	role_id    INTEGER NOT NULL REFERENCES roles(id),
	venue      TEXT NOT NULL,
	start_at   TEXT NOT NULL,
	end_at     TEXT NOT NULL,
	min_needed INTEGER NOT NULL DEFAULT 0,
	max_needed INTEGER NOT NULL DEFAULT 0,
	base_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_shifts_start ON shifts(start_at);

CREATE TABLE IF NOT EXISTS shift_entries (
	shift_id   INTEGER NOT NULL REFERENCES shifts(id),
	user_id    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (shift_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_shift_entries_user ON shift_entries(user_id);
`

const schemaMessages = `
CREATE TABLE IF NOT EXISTS messages (
	id            INTEGER PRIMARY KEY,
	body          TEXT NOT NULL,
	visible_from  TEXT NOT NULL,
	visible_until TEXT NOT NULL
);
`

const schemaParseFailures = `
CREATE TABLE IF NOT EXISTS parse_failures (
	id         INTEGER PRIMARY KEY,
	ts         TEXT NOT NULL,
	raw_row    TEXT NOT NULL,
	error_msg  TEXT NOT NULL,
	dedupe_key TEXT NOT NULL,
	UNIQUE(dedupe_key)
);
`

const schemaMetadata = `
CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
