package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// DB wraps the sql connection pool
type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool and verifies it
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id UUID PRIMARY KEY,
	prompt TEXT NOT NULL,
	status TEXT NOT NULL,
	plan JSONB,
	prompt_history JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS tracks (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL REFERENCES sessions(id),
	query TEXT NOT NULL,
	source_url TEXT NOT NULL DEFAULT '',
	video_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	artist TEXT NOT NULL DEFAULT '',
	duration DOUBLE PRECISION NOT NULL DEFAULT 0,
	file_path TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	analysis JSONB,
	played BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tracks_session ON tracks(session_id);
CREATE INDEX IF NOT EXISTS idx_tracks_status ON tracks(session_id, status);

CREATE TABLE IF NOT EXISTS mixes (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL REFERENCES sessions(id),
	track_a_id UUID NOT NULL REFERENCES tracks(id),
	track_b_id UUID NOT NULL REFERENCES tracks(id),
	style TEXT NOT NULL,
	compatibility DOUBLE PRECISION NOT NULL,
	mix_out_point DOUBLE PRECISION NOT NULL,
	mix_in_point DOUBLE PRECISION NOT NULL,
	crossfade_ms INTEGER NOT NULL,
	tempo_matched BOOLEAN NOT NULL,
	output_path TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	rating INTEGER,
	feedback TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mixes_session ON mixes(session_id);
`

// Migrate creates the schema if it does not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
