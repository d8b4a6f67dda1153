package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS metrics (
	id                  TEXT PRIMARY KEY,
	timestamp           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	event_type          VARCHAR(50) NOT NULL,
	organization_name   VARCHAR(255),
	decline_reason      VARCHAR(50),
	processing_time_ms  DOUBLE PRECISION,
	file_size_bytes     BIGINT,
	proposal_word_count INTEGER,
	user_session_id     VARCHAR(100),
	error_message       TEXT,
	llm_provider        VARCHAR(20),
	llm_tokens_used     INTEGER
);
CREATE INDEX IF NOT EXISTS idx_metrics_timestamp ON metrics (timestamp);
CREATE INDEX IF NOT EXISTS idx_metrics_event_type ON metrics (event_type, timestamp);
`

// Postgres stores events in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and ensures the schema exists.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create metrics schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (db *Postgres) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Record implements metrics.Sink.
func (db *Postgres) Record(ctx context.Context, e metrics.Event) error {
	args := append([]any{e.ID, e.Timestamp}, eventArgs(e)...)
	_, err := db.pool.Exec(ctx,
		`INSERT INTO metrics (id, timestamp, `+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", e.Type, err)
	}
	return nil
}

// EventsSince implements metrics.EventSource.
func (db *Postgres) EventsSince(ctx context.Context, since time.Time) ([]metrics.Event, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, timestamp, `+eventColumns+`
		 FROM metrics WHERE timestamp >= $1 ORDER BY timestamp`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []metrics.Event
	for rows.Next() {
		var e metrics.Event
		var n nullableFields
		if err := rows.Scan(append([]any{&e.ID, &e.Timestamp}, n.targets()...)...); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		n.apply(&e)
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
