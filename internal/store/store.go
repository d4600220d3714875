// Package store selects and opens the configured persistence backend.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/sqlstore"
	"github.com/jonathan/interview-coach/internal/types"
)

// Store is implemented by *db.DB (PostgreSQL) and *sqlstore.Store (SQLite, MySQL).
type Store interface {
	CreateUser(ctx context.Context, user *types.User) error
	CreateUserWithResume(ctx context.Context, user *types.User, resume *types.Resume) error
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	SaveResume(ctx context.Context, resume *types.Resume) error
	GetResume(ctx context.Context, userID uuid.UUID) (*types.Resume, error)

	CreateInterview(ctx context.Context, iv *types.Interview) error
	GetInterview(ctx context.Context, id uuid.UUID) (*types.Interview, error)
	ListInterviews(ctx context.Context, ownerID uuid.UUID) ([]types.Interview, error)
	GetAnswer(ctx context.Context, interviewID uuid.UUID, questionText string) (*types.Answer, error)
	SaveAnswer(ctx context.Context, a *types.Answer) error
	ListAnswers(ctx context.Context, interviewID uuid.UUID) ([]types.Answer, error)
	AppendScore(ctx context.Context, e *types.ScoreEntry) error
	ListScores(ctx context.Context, interviewID uuid.UUID) ([]types.ScoreEntry, error)
	CreateReport(ctx context.Context, r *types.Report) error
	ListReports(ctx context.Context, interviewID uuid.UUID) ([]types.Report, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*db.DB)(nil)
	_ Store = (*sqlstore.Store)(nil)
)

// Open connects to the backend named by driver: postgres, sqlite or mysql.
func Open(ctx context.Context, driver, url string) (Store, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		pg, err := db.Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case sqlstore.DriverSQLite, "sqlite3", sqlstore.DriverMySQL:
		s, err := sqlstore.Open(ctx, driver, url)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
