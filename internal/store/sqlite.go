// Package store provides SQLite-backed archival of sizing runs.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	project_name    TEXT NOT NULL DEFAULT '',
	buildings       INTEGER NOT NULL DEFAULT 0,
	pipes           INTEGER NOT NULL DEFAULT 0,
	compliant_pipes INTEGER NOT NULL DEFAULT 0,
	fallback_pipes  INTEGER NOT NULL DEFAULT 0,
	violations      INTEGER NOT NULL DEFAULT 0,
	total_length_m  REAL NOT NULL DEFAULT 0.0,
	max_velocity_ms REAL NOT NULL DEFAULT 0.0,
	total_flow_kg_s REAL NOT NULL DEFAULT 0.0,
	outputs_json    TEXT NOT NULL DEFAULT '{}',
	created_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pipe_results (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id                 TEXT NOT NULL,
	pipe_id                TEXT NOT NULL,
	diameter_nominal       TEXT NOT NULL DEFAULT '',
	diameter_m             REAL NOT NULL DEFAULT 0.0,
	velocity_ms            REAL NOT NULL DEFAULT 0.0,
	pressure_drop_pa_per_m REAL NOT NULL DEFAULT 0.0,
	pipe_category          TEXT NOT NULL DEFAULT '',
	sizing_source          TEXT NOT NULL DEFAULT '',
	compliant              INTEGER NOT NULL DEFAULT 0,
	UNIQUE(run_id, pipe_id)
);
CREATE INDEX IF NOT EXISTS idx_pipe_results_run ON pipe_results(run_id);
`

// NewDB opens a SQLite database at the given path with recommended
// pragmas and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows concurrent reads but only a single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
