// Package db provides PostgreSQL storage for users, interviews, answers, scores and reports.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Migrate creates any missing tables and indexes
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS resumes (
		user_id           UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		original_filename TEXT NOT NULL,
		parsed_text       TEXT NOT NULL,
		skills            JSONB NOT NULL DEFAULT '[]',
		uploaded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS interviews (
		id             UUID PRIMARY KEY,
		owner_id       UUID NOT NULL,
		interview_type TEXT NOT NULL,
		questions      JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_owner ON interviews (owner_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id             BIGSERIAL PRIMARY KEY,
		interview_id   UUID NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
		question_index INTEGER NOT NULL,
		question_text  TEXT NOT NULL,
		answer_text    TEXT,
		skill          TEXT NOT NULL,
		max_score      INTEGER NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (interview_id, question_text)
	)`,
	`CREATE TABLE IF NOT EXISTS score_entries (
		id             BIGSERIAL PRIMARY KEY,
		interview_id   UUID NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
		question_index INTEGER NOT NULL,
		skill          TEXT NOT NULL,
		score_obtained INTEGER NOT NULL,
		score_total    INTEGER NOT NULL,
		feedback       TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_score_entries_interview ON score_entries (interview_id, id)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id            UUID PRIMARY KEY,
		interview_id  UUID NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
		overall_score DOUBLE PRECISION NOT NULL,
		artifact_path TEXT NOT NULL,
		generated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_interview ON reports (interview_id, generated_at)`,
}
