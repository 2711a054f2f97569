package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// sqliteSchema holds the local fallback store tables, applied on open.
// Mirrors the postgres tables in scripts/db_create_tables.sql.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS workout_day (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	title TEXT NOT NULL,
	details TEXT NOT NULL DEFAULT '',
	phase TEXT NOT NULL DEFAULT '',
	week INTEGER NOT NULL DEFAULT 0,
	tags TEXT,
	planned_distance_km REAL,
	planned_duration_min INTEGER,
	actual_distance_km REAL,
	actual_duration_min INTEGER,
	intensity TEXT NOT NULL,
	status TEXT NOT NULL,
	completed_at TIMESTAMP,
	moved_from_date TEXT,
	notes TEXT,
	activity_type TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_workout_day_date ON workout_day(date);

CREATE TABLE IF NOT EXISTS workout_history (
	id TEXT PRIMARY KEY,
	workout_id TEXT NOT NULL,
	action TEXT NOT NULL,
	from_date TEXT,
	to_date TEXT,
	from_status TEXT,
	to_status TEXT,
	details TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS checkin (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL UNIQUE,
	weight_kg REAL,
	sleep_hours REAL,
	steps INTEGER,
	energy_1_10 INTEGER,
	pain_0_10 INTEGER,
	pain_location TEXT,
	notes TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// OpenSQLite opens (and if needed initializes) the local fallback store.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// sqlite works best with a single writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := conn.Exec(sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return conn, nil
}
