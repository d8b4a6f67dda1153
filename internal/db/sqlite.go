package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
)

// CurrentSchemaVersion is the latest SQLite schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

const memoryPath = ":memory:"

// SQLite stores events in a local SQLite file. Timestamps are unix milliseconds.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := memoryPath
	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		// Pragmas in the connection string apply to every pooled connection.
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == memoryPath {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS metrics (
		  id                  TEXT PRIMARY KEY,
		  timestamp           INTEGER NOT NULL,
		  event_type          TEXT NOT NULL,
		  organization_name   TEXT,
		  decline_reason      TEXT,
		  processing_time_ms  REAL,
		  file_size_bytes     INTEGER,
		  proposal_word_count INTEGER,
		  user_session_id     TEXT,
		  error_message       TEXT,
		  llm_provider        TEXT,
		  llm_tokens_used     INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_metrics_timestamp ON metrics(timestamp);
		CREATE INDEX IF NOT EXISTS idx_metrics_event_type ON metrics(event_type, timestamp);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Record implements metrics.Sink.
func (s *SQLite) Record(ctx context.Context, e metrics.Event) error {
	args := append([]any{e.ID, e.Timestamp.UnixMilli()}, eventArgs(e)...)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metrics (id, timestamp, `+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", e.Type, err)
	}
	return nil
}

// EventsSince implements metrics.EventSource.
func (s *SQLite) EventsSince(ctx context.Context, since time.Time) ([]metrics.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, `+eventColumns+`
		 FROM metrics WHERE timestamp >= ? ORDER BY timestamp, id`,
		since.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []metrics.Event
	for rows.Next() {
		var e metrics.Event
		var ms int64
		var n nullableFields
		if err := rows.Scan(append([]any{&e.ID, &ms}, n.targets()...)...); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		n.apply(&e)
		e.Timestamp = time.UnixMilli(ms).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
