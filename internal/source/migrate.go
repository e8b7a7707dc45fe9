package source

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS creators (
	user_id                 BIGINT PRIMARY KEY,
	phone_raw               TEXT,
	tiktok_username         TEXT,
	real_first_name         TEXT,
	agency_status           TEXT,
	role_tag                TEXT,
	group_raw               TEXT,
	manager_raw             TEXT,
	tier_tag                TEXT,
	profile_pic_url         TEXT,
	stats_as_of             TIMESTAMPTZ,
	diamonds_mtd            DOUBLE PRECISION,
	valid_days_mtd          DOUBLE PRECISION,
	live_duration_mtd_hours DOUBLE PRECISION,
	lifecycle               TEXT
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id           TEXT PRIMARY KEY,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	phones       INTEGER NOT NULL DEFAULT 0,
	ok           INTEGER NOT NULL DEFAULT 0,
	fail         INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS creators (
	user_id                 INTEGER PRIMARY KEY,
	phone_raw               TEXT,
	tiktok_username         TEXT,
	real_first_name         TEXT,
	agency_status           TEXT,
	role_tag                TEXT,
	group_raw               TEXT,
	manager_raw             TEXT,
	tier_tag                TEXT,
	profile_pic_url         TEXT,
	stats_as_of             TEXT,
	diamonds_mtd            REAL,
	valid_days_mtd          REAL,
	live_duration_mtd_hours REAL,
	lifecycle               TEXT
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id           TEXT PRIMARY KEY,
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME,
	phones       INTEGER NOT NULL DEFAULT 0,
	ok           INTEGER NOT NULL DEFAULT 0,
	fail         INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`

// MigratePostgres applies the schema on a Postgres pool.
func MigratePostgres(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "source: migrate postgres")
	}
	return nil
}

// MigrateSQLite applies the schema on a SQLite handle.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "source: migrate sqlite")
	}
	return nil
}
