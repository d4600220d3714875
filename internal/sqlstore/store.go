// Package sqlstore implements interview storage on database/sql for SQLite and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Store is a database/sql backed store. Timestamps are stored as Unix nanoseconds and
// UUIDs as text so the same queries work on every supported driver.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to dsn with the named driver and verifies the connection.
// For SQLite, dsn is a file path; pragmas for foreign keys and a busy timeout are added.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if d.name == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if d.name == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db, dialect: d}, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Driver returns the driver name in use.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

type dialect struct {
	name   string
	schema []string
}

var dialects = map[string]dialect{
	DriverSQLite: {name: DriverSQLite, schema: sqliteSchema},
	"sqlite3":    {name: DriverSQLite, schema: sqliteSchema},
	DriverMySQL:  {name: DriverMySQL, schema: mysqlSchema},
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resumes (
		user_id           TEXT PRIMARY KEY,
		original_filename TEXT NOT NULL,
		parsed_text       TEXT NOT NULL,
		skills            TEXT NOT NULL,
		uploaded_at       INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS interviews (
		id             TEXT PRIMARY KEY,
		owner_id       TEXT NOT NULL,
		interview_type TEXT NOT NULL,
		questions      TEXT NOT NULL,
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_owner ON interviews (owner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		interview_id   TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
		question_index INTEGER NOT NULL,
		question_text  TEXT NOT NULL,
		answer_text    TEXT,
		skill          TEXT NOT NULL,
		max_score      INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL,
		UNIQUE (interview_id, question_text)
	)`,
	`CREATE TABLE IF NOT EXISTS score_entries (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		interview_id   TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
		question_index INTEGER NOT NULL,
		skill          TEXT NOT NULL,
		score_obtained INTEGER NOT NULL,
		score_total    INTEGER NOT NULL,
		feedback       TEXT NOT NULL DEFAULT '',
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_score_entries_interview ON score_entries (interview_id, id)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id            TEXT PRIMARY KEY,
		interview_id  TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
		overall_score REAL NOT NULL,
		artifact_path TEXT NOT NULL,
		generated_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_interview ON reports (interview_id, generated_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36) PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		username      VARCHAR(64) NOT NULL UNIQUE,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    BIGINT NOT NULL
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS resumes (
		user_id           CHAR(36) PRIMARY KEY,
		original_filename VARCHAR(255) NOT NULL,
		parsed_text       MEDIUMTEXT NOT NULL,
		skills            TEXT NOT NULL,
		uploaded_at       BIGINT NOT NULL
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS interviews (
		id             CHAR(36) PRIMARY KEY,
		owner_id       CHAR(36) NOT NULL,
		interview_type VARCHAR(64) NOT NULL,
		questions      MEDIUMTEXT NOT NULL,
		created_at     BIGINT NOT NULL,
		INDEX idx_interviews_owner (owner_id, created_at)
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS answers (
		id             BIGINT AUTO_INCREMENT PRIMARY KEY,
		interview_id   CHAR(36) NOT NULL,
		question_index INT NOT NULL,
		question_text  TEXT NOT NULL,
		answer_text    MEDIUMTEXT NULL,
		skill          VARCHAR(255) NOT NULL,
		max_score      INT NOT NULL,
		updated_at     BIGINT NOT NULL,
		UNIQUE KEY uq_answers_question (interview_id, question_text(255)),
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS score_entries (
		id             BIGINT AUTO_INCREMENT PRIMARY KEY,
		interview_id   CHAR(36) NOT NULL,
		question_index INT NOT NULL,
		skill          VARCHAR(255) NOT NULL,
		score_obtained INT NOT NULL,
		score_total    INT NOT NULL,
		feedback       TEXT NOT NULL,
		created_at     BIGINT NOT NULL,
		INDEX idx_score_entries_interview (interview_id, id),
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reports (
		id            CHAR(36) PRIMARY KEY,
		interview_id  CHAR(36) NOT NULL,
		overall_score DOUBLE NOT NULL,
		artifact_path VARCHAR(1024) NOT NULL,
		generated_at  BIGINT NOT NULL,
		INDEX idx_reports_interview (interview_id, generated_at),
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	) CHARACTER SET utf8mb4`,
}
