package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/skills"
	"github.com/jonathan/interview-coach/internal/sqlstore"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// staleLookupStore hides existing users from the pre-insert lookups, as a second
// registration racing the first would see them.
type staleLookupStore struct {
	*sqlstore.Store
}

func (staleLookupStore) GetUserByUsername(context.Context, string) (*types.User, error) {
	return nil, nil
}

func (staleLookupStore) GetUserByEmail(context.Context, string) (*types.User, error) {
	return nil, nil
}

func TestUserService_RegisterConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	st, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	passwords, err := config.NewPasswordConfig(10, "")
	require.NoError(t, err)
	svc := NewUserService(staleLookupStore{st}, passwords, ingestion.NewExtractor(logger), skills.NewExtractor(nil), logger)

	upload := ResumeUpload{Filename: "cv.txt", Data: []byte("Python and SQL")}
	first, resume, err := svc.Register(ctx, &types.CreateUserRequest{
		Name: "Ada", Email: "ada@example.com", Username: "ada", Password: "correct-horse",
	}, upload)
	require.NoError(t, err)
	assert.Equal(t, first.ID, resume.UserID)

	tests := []struct {
		name      string
		req       *types.CreateUserRequest
		wantField string
		wantValue string
	}{
		{
			name:      "username",
			req:       &types.CreateUserRequest{Name: "A", Email: "other@example.com", Username: "ada", Password: "correct-horse"},
			wantField: "username",
			wantValue: "ada",
		},
		{
			name:      "email",
			req:       &types.CreateUserRequest{Name: "A", Email: "ADA@example.com", Username: "ada2", Password: "correct-horse"},
			wantField: "email",
			wantValue: "ADA@example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.req, upload)
			var exists *ErrUserAlreadyExists
			require.ErrorAs(t, err, &exists)
			assert.Equal(t, tt.wantField, exists.Field)
			assert.Equal(t, tt.wantValue, exists.Value)
			assert.Equal(t, http.StatusConflict, HTTPStatus(err))
		})
	}

	// The losing registrations left no user rows behind.
	byEmail, err := st.GetUserByEmail(ctx, "other@example.com")
	require.NoError(t, err)
	assert.Nil(t, byEmail)
	byName, err := st.GetUserByUsername(ctx, "ada2")
	require.NoError(t, err)
	assert.Nil(t, byName)
}
