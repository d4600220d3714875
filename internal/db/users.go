package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/interview-coach/internal/types"
)

// CreateUser inserts a user, assigning an ID and creation time when unset
func (db *DB) CreateUser(ctx context.Context, user *types.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if err := insertUser(ctx, db.pool, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateUserWithResume inserts a user and their first résumé in one transaction.
// The résumé's UserID is set to the new user's ID.
func (db *DB) CreateUserWithResume(ctx context.Context, user *types.User, resume *types.Resume) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	resume.UserID = user.ID

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertUser(ctx, tx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if err := upsertResume(ctx, tx, resume); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user: %w", err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertUser(ctx context.Context, q execer, user *types.User) error {
	_, err := q.Exec(ctx,
		`INSERT INTO users (id, name, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Username, strings.ToLower(user.Email), user.PasswordHash, user.CreatedAt,
	)
	return duplicateUser(err)
}

// duplicateUser turns a unique_violation on the users table into a *types.DuplicateError.
func duplicateUser(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	field := "username"
	if strings.Contains(pgErr.ConstraintName, "email") {
		field = "email"
	}
	return fmt.Errorf("%w: %s", &types.DuplicateError{Field: field}, pgErr.Message)
}

// GetUser retrieves a user by ID, or nil if none exists
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return db.getUser(ctx, `id = $1`, id)
}

// GetUserByUsername retrieves a user by username, or nil if none exists
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return db.getUser(ctx, `username = $1`, username)
}

// GetUserByEmail retrieves a user by email (case-insensitive), or nil if none exists
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return db.getUser(ctx, `email = $1`, strings.ToLower(email))
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*types.User, error) {
	var u types.User
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, username, email, password_hash, created_at FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// SaveResume stores the user's current résumé, replacing any previous upload
func (db *DB) SaveResume(ctx context.Context, resume *types.Resume) error {
	return upsertResume(ctx, db.pool, resume)
}

func upsertResume(ctx context.Context, q execer, resume *types.Resume) error {
	if resume.UploadedAt.IsZero() {
		resume.UploadedAt = time.Now().UTC()
	}
	skills, err := json.Marshal(resume.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	_, err = q.Exec(ctx,
		`INSERT INTO resumes (user_id, original_filename, parsed_text, skills, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET original_filename = $2, parsed_text = $3, skills = $4, uploaded_at = $5`,
		resume.UserID, resume.OriginalFilename, resume.ParsedText, skills, resume.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save resume: %w", err)
	}
	return nil
}

// GetResume retrieves a user's current résumé, or nil if none was uploaded
func (db *DB) GetResume(ctx context.Context, userID uuid.UUID) (*types.Resume, error) {
	var (
		r      types.Resume
		skills []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, original_filename, parsed_text, skills, uploaded_at
		 FROM resumes WHERE user_id = $1`,
		userID,
	).Scan(&r.UserID, &r.OriginalFilename, &r.ParsedText, &skills, &r.UploadedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &r.Skills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal resume skills: %w", err)
		}
	}
	return &r, nil
}
