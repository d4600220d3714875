// Package storetest holds behaviour tests shared by every store implementation.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Store is the persistence surface exercised by Run.
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
}

// Run exercises s against the behaviour every store must provide. Each subtest uses
// fresh random identifiers, so s may be shared with other data.
func Run(t *testing.T, s Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, s) })
	t.Run("user with resume", func(t *testing.T) { testUserWithResume(t, s) })
	t.Run("resumes", func(t *testing.T) { testResumes(t, s) })
	t.Run("interviews", func(t *testing.T) { testInterviews(t, s) })
	t.Run("answers", func(t *testing.T) { testAnswers(t, s) })
	t.Run("scores", func(t *testing.T) { testScores(t, s) })
	t.Run("reports", func(t *testing.T) { testReports(t, s) })
}

func newUser(t *testing.T, s Store) *types.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	u := &types.User{
		Name:         "Test User",
		Username:     "user" + suffix,
		Email:        "Test-" + suffix + "@Example.com",
		PasswordHash: "$2a$12$hash",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newInterview(t *testing.T, s Store, owner uuid.UUID, n int) *types.Interview {
	t.Helper()
	iv := &types.Interview{OwnerID: owner, Type: types.DefaultInterviewType}
	for i := 0; i < n; i++ {
		iv.Questions = append(iv.Questions, types.QuestionSpec{
			Skill:    []string{"Python", "Sql"}[i%2],
			Question: fmt.Sprintf("Question %d for %s?", i+1, iv.OwnerID),
			MaxScore: types.DefaultMaxScore,
		})
	}
	require.NoError(t, s.CreateInterview(context.Background(), iv))
	return iv
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	u := newUser(t, s)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Millisecond)

	byName, err := s.GetUserByUsername(ctx, u.Username)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := s.GetUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = s.GetUserByUsername(ctx, "nobody-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := &types.User{Name: "Dup", Username: u.Username, Email: "other-" + uuid.NewString() + "@example.com", PasswordHash: "x"}
	err = s.CreateUser(ctx, dup)
	var dupErr *types.DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "username", dupErr.Field)

	dup = &types.User{Name: "Dup", Username: "other" + uuid.NewString()[:8], Email: strings.ToUpper(u.Email), PasswordHash: "x"}
	err = s.CreateUser(ctx, dup)
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "email", dupErr.Field)
}

func testUserWithResume(t *testing.T, s Store) {
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	u := &types.User{Name: "Ada", Username: "ada" + suffix, Email: "ada-" + suffix + "@example.com", PasswordHash: "x"}
	r := &types.Resume{OriginalFilename: "cv.txt", ParsedText: "python", Skills: types.SkillSet{"Python"}}
	require.NoError(t, s.CreateUserWithResume(ctx, u, r))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, u.ID, r.UserID)

	got, err := s.GetResume(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.SkillSet{"Python"}, got.Skills)

	// A username collision leaves neither row behind.
	other := &types.User{Name: "Eve", Username: u.Username, Email: "eve-" + suffix + "@example.com", PasswordHash: "x"}
	err = s.CreateUserWithResume(ctx, other, &types.Resume{OriginalFilename: "eve.txt", ParsedText: "java"})
	var dupErr *types.DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "username", dupErr.Field)

	missing, err := s.GetUserByEmail(ctx, other.Email)
	require.NoError(t, err)
	assert.Nil(t, missing)
	orphan, err := s.GetResume(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan)
}

func testResumes(t *testing.T, s Store) {
	ctx := context.Background()
	u := newUser(t, s)

	none, err := s.GetResume(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	first := &types.Resume{UserID: u.ID, OriginalFilename: "cv.pdf", ParsedText: "python", Skills: types.SkillSet{"Python"}}
	require.NoError(t, s.SaveResume(ctx, first))

	second := &types.Resume{UserID: u.ID, OriginalFilename: "cv2.docx", ParsedText: "go and sql", Skills: types.SkillSet{"Sql", "Docker"}}
	require.NoError(t, s.SaveResume(ctx, second))

	got, err := s.GetResume(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cv2.docx", got.OriginalFilename)
	assert.Equal(t, "go and sql", got.ParsedText)
	assert.Equal(t, types.SkillSet{"Sql", "Docker"}, got.Skills)
}

func testInterviews(t *testing.T, s Store) {
	ctx := context.Background()
	owner := uuid.New()

	older := newInterview(t, s, owner, 3)
	time.Sleep(2 * time.Millisecond)
	newer := newInterview(t, s, owner, 2)
	newInterview(t, s, uuid.New(), 1)

	got, err := s.GetInterview(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, types.DefaultInterviewType, got.Type)
	assert.Equal(t, older.Questions, got.Questions)

	missing, err := s.GetInterview(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := s.ListInterviews(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	// every question gets an unanswered placeholder
	answers, err := s.ListAnswers(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	for i, a := range answers {
		assert.Equal(t, i, a.QuestionIndex)
		assert.Equal(t, older.Questions[i].Question, a.QuestionText)
		assert.Equal(t, older.Questions[i].Skill, a.Skill)
		assert.Equal(t, types.DefaultMaxScore, a.MaxScore)
		assert.Nil(t, a.AnswerText)
	}
}

func testAnswers(t *testing.T, s Store) {
	ctx := context.Background()
	iv := newInterview(t, s, uuid.New(), 2)
	q := iv.Questions[1]

	placeholder, err := s.GetAnswer(ctx, iv.ID, q.Question)
	require.NoError(t, err)
	require.NotNil(t, placeholder)
	assert.False(t, placeholder.Answered())

	first := "first attempt"
	require.NoError(t, s.SaveAnswer(ctx, &types.Answer{
		InterviewID: iv.ID, QuestionIndex: 1, QuestionText: q.Question, AnswerText: &first, Skill: q.Skill, MaxScore: q.MaxScore,
	}))
	second := ""
	saved := &types.Answer{
		InterviewID: iv.ID, QuestionIndex: 1, QuestionText: q.Question, AnswerText: &second, Skill: q.Skill, MaxScore: q.MaxScore,
	}
	require.NoError(t, s.SaveAnswer(ctx, saved))
	assert.Equal(t, placeholder.ID, saved.ID)

	got, err := s.GetAnswer(ctx, iv.ID, q.Question)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Answered())
	assert.Equal(t, "", got.Text())

	answers, err := s.ListAnswers(ctx, iv.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)

	// an answer for a question without a placeholder is created
	extra := "typed"
	created := &types.Answer{InterviewID: iv.ID, QuestionIndex: 2, QuestionText: "Unlisted question?", AnswerText: &extra, Skill: "Go", MaxScore: 5}
	require.NoError(t, s.SaveAnswer(ctx, created))
	assert.NotZero(t, created.ID)

	answers, err = s.ListAnswers(ctx, iv.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 3)

	none, err := s.GetAnswer(ctx, iv.ID, "no such question")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testScores(t *testing.T, s Store) {
	ctx := context.Background()
	iv := newInterview(t, s, uuid.New(), 2)

	entries := []*types.ScoreEntry{
		{InterviewID: iv.ID, QuestionIndex: 0, Skill: "Python", ScoreObtained: 1, ScoreTotal: 5, Feedback: "short"},
		{InterviewID: iv.ID, QuestionIndex: 0, Skill: "Python", ScoreObtained: 4, ScoreTotal: 5, Feedback: "better"},
		{InterviewID: iv.ID, QuestionIndex: 1, Skill: "Sql", ScoreObtained: 3, ScoreTotal: 5},
	}
	for _, e := range entries {
		require.NoError(t, s.AppendScore(ctx, e))
		assert.NotZero(t, e.ID)
	}

	got, err := s.ListScores(ctx, iv.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].ScoreObtained)
	assert.Equal(t, 4, got[1].ScoreObtained)
	assert.Equal(t, "better", got[1].Feedback)
	assert.Equal(t, "Sql", got[2].Skill)

	empty, err := s.ListScores(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testReports(t *testing.T, s Store) {
	ctx := context.Background()
	iv := newInterview(t, s, uuid.New(), 1)

	first := &types.Report{InterviewID: iv.ID, OverallScore: 40, ArtifactPath: "reports/a.pdf"}
	require.NoError(t, s.CreateReport(ctx, first))
	time.Sleep(2 * time.Millisecond)
	second := &types.Report{InterviewID: iv.ID, OverallScore: 40, ArtifactPath: "reports/b.pdf"}
	require.NoError(t, s.CreateReport(ctx, second))

	got, err := s.ListReports(ctx, iv.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, "reports/b.pdf", got[1].ArtifactPath)
	assert.InDelta(t, 40.0, got[1].OverallScore, 1e-9)
}
