package interview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/evaluation"
	"github.com/jonathan/interview-coach/internal/events"
	"github.com/jonathan/interview-coach/internal/questions"
	"github.com/jonathan/interview-coach/internal/rendering"
	"github.com/jonathan/interview-coach/internal/scoring"
	"github.com/jonathan/interview-coach/internal/sqlstore"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, types.Audio) (string, error) {
	return f.text, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type mapCache struct {
	mu          sync.Mutex
	results     map[uuid.UUID]*types.Aggregate
	invalidated int
}

func newMapCache() *mapCache {
	return &mapCache{results: make(map[uuid.UUID]*types.Aggregate)}
}

func (c *mapCache) GetResult(_ context.Context, id uuid.UUID) (*types.Aggregate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[id], nil
}

func (c *mapCache) SetResult(_ context.Context, id uuid.UUID, agg *types.Aggregate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[id] = agg
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, id)
	c.invalidated++
	return nil
}

type fixture struct {
	svc       *Service
	store     *sqlstore.Store
	publisher *recordingPublisher
	cache     *mapCache
	reportDir string
	owner     uuid.UUID
}

func setup(t *testing.T, transcriber Transcriber, policy scoring.Policy, logger *zap.Logger) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	user := &types.User{Name: "Ada", Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, user))

	f := &fixture{
		store:     st,
		publisher: &recordingPublisher{},
		cache:     newMapCache(),
		reportDir: t.TempDir(),
		owner:     user.ID,
	}
	f.svc = NewService(Deps{
		Store:       st,
		Generator:   questions.NewGenerator(nil, logger),
		Evaluator:   evaluation.NewEvaluator(nil, logger),
		Transcriber: transcriber,
		Renderer:    rendering.NewHTMLRenderer(f.reportDir, logger),
		Cache:       f.cache,
		Publisher:   f.publisher,
		Logger:      logger,
	}, Options{ScorePolicy: policy})
	return f
}

func (f *fixture) uploadResume(t *testing.T, skillSet ...string) {
	t.Helper()
	require.NoError(t, f.store.SaveResume(context.Background(), &types.Resume{
		UserID:           f.owner,
		OriginalFilename: "resume.txt",
		ParsedText:       strings.Join(skillSet, " "),
		Skills:           skillSet,
		UploadedAt:       time.Now().UTC(),
	}))
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestStart_RequiresResume(t *testing.T) {
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))

	_, err := f.svc.Start(context.Background(), f.owner, "")

	var missing *ResumeMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, f.owner, missing.UserID)
	assert.Zero(t, f.publisher.count(events.InterviewStarted))
}

func TestStart_PlaceholderQuestions(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	f.uploadResume(t, "Python")

	iv, err := f.svc.Start(ctx, f.owner, "")
	require.NoError(t, err)
	require.Len(t, iv.Questions, questions.DefaultCount)
	assert.Equal(t, types.DefaultInterviewType, iv.Type)
	for i, q := range iv.Questions {
		assert.Equal(t, "Python", q.Skill)
		assert.Equal(t, types.DefaultMaxScore, q.MaxScore, "question %d", i)
	}
	assert.Equal(t, "Placeholder question #1 for Python", iv.Questions[0].Question)

	progress, err := f.svc.Progress(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateCreated, progress.State)
	assert.Equal(t, 0, progress.NextIndex)
	assert.Equal(t, 1, f.publisher.count(events.InterviewStarted))

	list, err := f.svc.List(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, iv.ID, list[0].ID)
}

func TestQuestion(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"go", "sql"}, "behavioral")
	require.NoError(t, err)
	assert.Equal(t, "behavioral", iv.Type)

	view, err := f.svc.Question(ctx, f.owner, iv.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, view.Question)
	assert.False(t, view.Complete)
	assert.Equal(t, iv.Questions[1], *view.Question)

	view, err = f.svc.Question(ctx, f.owner, iv.ID, len(iv.Questions))
	require.NoError(t, err)
	assert.True(t, view.Complete)
	assert.Nil(t, view.Question)

	_, err = f.svc.Question(ctx, f.owner, iv.ID, -1)
	var invalid *InvalidIndexError
	assert.ErrorAs(t, err, &invalid)

	_, err = f.svc.Question(ctx, uuid.New(), iv.ID, 0)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = f.svc.Question(ctx, f.owner, uuid.New(), 0)
	assert.ErrorAs(t, err, &notFound)
}

func TestSubmitTranscript_FallbackScore(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Python"}, "")
	require.NoError(t, err)

	sub, err := f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, "  "+words(40)+"  ")
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Score)
	assert.Equal(t, 5, sub.MaxScore)
	assert.Equal(t, evaluation.FallbackFeedback, sub.Feedback)
	assert.Equal(t, words(40), sub.Transcript)
	assert.False(t, sub.Complete)

	progress, err := f.svc.Progress(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateInProgress, progress.State)
	assert.Equal(t, 1, progress.Answered)
	assert.Equal(t, 1, progress.NextIndex)

	_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, len(iv.Questions), "late")
	var invalid *InvalidIndexError
	assert.ErrorAs(t, err, &invalid)

	_, err = f.svc.SubmitTranscript(ctx, uuid.New(), iv.ID, 0, "hijack")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSubmitAnswer_Transcribes(t *testing.T) {
	ctx := context.Background()
	f := setup(t, fakeTranscriber{text: words(100)}, scoring.PolicyAppend, zaptest.NewLogger(t))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)

	sub, err := f.svc.SubmitAnswer(ctx, f.owner, iv.ID, 0, types.Audio{Data: []byte("RIFF"), MIMEType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, 5, sub.Score)
	assert.Equal(t, words(100), sub.Transcript)
}

func TestSubmitAnswer_TranscriptionFailure(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	f := setup(t, fakeTranscriber{err: errors.New("quota exceeded")}, scoring.PolicyAppend, zap.New(core))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)

	sub, err := f.svc.SubmitAnswer(ctx, f.owner, iv.ID, 0, types.Audio{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "", sub.Transcript)
	assert.Equal(t, 0, sub.Score)
	assert.Equal(t, 1, logs.FilterMessage("transcription failed").Len())

	answer, err := f.store.GetAnswer(ctx, iv.ID, iv.Questions[0].Question)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.True(t, answer.Answered())
	assert.Equal(t, "", answer.Text())
}

func TestSubmitAnswer_NoTranscriberConfigured(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)

	sub, err := f.svc.SubmitAnswer(ctx, f.owner, iv.ID, 2, types.Audio{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Score)
}

func TestCompleteInterview(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	f.uploadResume(t, "Python")
	iv, err := f.svc.Start(ctx, f.owner, "")
	require.NoError(t, err)

	var last *types.Submission
	for i := range iv.Questions {
		last, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, i, "")
		require.NoError(t, err)
	}
	assert.True(t, last.Complete)

	// Re-answering a question of a complete interview does not complete it again.
	_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.publisher.count(events.InterviewCompleted))
	assert.Equal(t, len(iv.Questions)+1, f.publisher.count(events.AnswerEvaluated))

	progress, err := f.svc.Progress(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateComplete, progress.State)
	assert.Equal(t, len(iv.Questions), progress.NextIndex)

	result, err := f.svc.Result(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.OverallObtained)
	assert.Equal(t, 80, result.OverallTotal)
	assert.Equal(t, 0.0, result.OverallPercent)
	python, ok := result.Skill("Python")
	require.True(t, ok)
	assert.Equal(t, 80, python.Total)
}

func TestCompleteInterview_EmptyAnswers(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	f.uploadResume(t, "Python")
	iv, err := f.svc.Start(ctx, f.owner, "")
	require.NoError(t, err)
	require.Len(t, iv.Questions, 15)

	first, err := f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Score)

	scores, err := f.store.ListScores(ctx, iv.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 0, scores[0].QuestionIndex)
	assert.Equal(t, "Python", scores[0].Skill)
	assert.Equal(t, 0, scores[0].ScoreObtained)
	assert.Equal(t, 5, scores[0].ScoreTotal)

	for i := 1; i < len(iv.Questions); i++ {
		_, err := f.svc.SubmitTranscript(ctx, f.owner, iv.ID, i, "")
		require.NoError(t, err)
	}

	result, err := f.svc.Result(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.OverallObtained)
	assert.Equal(t, 75, result.OverallTotal)
	assert.Equal(t, 0.0, result.OverallPercent)
	require.Len(t, result.PerSkill, 1)
	python, ok := result.Skill("Python")
	require.True(t, ok)
	assert.Equal(t, 0, python.Obtained)
	assert.Equal(t, 75, python.Total)
}

func TestResult_Policies(t *testing.T) {
	tests := []struct {
		name          string
		policy        scoring.Policy
		wantObtained  int
		wantTotal     int
		wantPercent   float64
		wantSkillsLen int
	}{
		{name: "append counts every attempt", policy: scoring.PolicyAppend, wantObtained: 7, wantTotal: 15, wantPercent: 46.666666666666664, wantSkillsLen: 2},
		{name: "latest keeps the newest attempt per question", policy: scoring.PolicyLatest, wantObtained: 6, wantTotal: 10, wantPercent: 60, wantSkillsLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setup(t, nil, tt.policy, zaptest.NewLogger(t))
			iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go", "SQL"}, "")
			require.NoError(t, err)

			_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, words(20))
			require.NoError(t, err)
			_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, words(100))
			require.NoError(t, err)
			_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 1, words(20))
			require.NoError(t, err)

			result, err := f.svc.Result(ctx, f.owner, iv.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantObtained, result.OverallObtained)
			assert.Equal(t, tt.wantTotal, result.OverallTotal)
			assert.InDelta(t, tt.wantPercent, result.OverallPercent, 1e-9)
			assert.Len(t, result.PerSkill, tt.wantSkillsLen)
		})
	}
}

func TestResult_CacheInvalidatedOnSubmit(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)

	_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, words(40))
	require.NoError(t, err)

	first, err := f.svc.Result(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.OverallObtained)
	cached, _ := f.cache.GetResult(ctx, iv.ID)
	require.NotNil(t, cached)

	_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 1, words(60))
	require.NoError(t, err)
	cached, _ = f.cache.GetResult(ctx, iv.ID)
	assert.Nil(t, cached)

	second, err := f.svc.Result(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, second.OverallObtained)
	assert.Equal(t, 2, f.cache.invalidated)
}

// interleavingCache runs during once, just before the first SetResult is stored.
type interleavingCache struct {
	*mapCache
	once   sync.Once
	during func()
}

func (c *interleavingCache) SetResult(ctx context.Context, id uuid.UUID, agg *types.Aggregate) error {
	c.once.Do(c.during)
	return c.mapCache.SetResult(ctx, id, agg)
}

func TestResult_SubmissionDuringAggregation(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	f := setup(t, nil, scoring.PolicyAppend, logger)
	cache := &interleavingCache{mapCache: newMapCache()}
	svc := NewService(Deps{
		Store:     f.store,
		Generator: questions.NewGenerator(nil, logger),
		Evaluator: evaluation.NewEvaluator(nil, logger),
		Cache:     cache,
		Logger:    logger,
	}, Options{ScorePolicy: scoring.PolicyAppend})

	iv, err := svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)
	_, err = svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, words(40))
	require.NoError(t, err)

	cache.during = func() {
		_, err := svc.SubmitTranscript(ctx, f.owner, iv.ID, 1, words(60))
		require.NoError(t, err)
	}

	stale, err := svc.Result(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stale.OverallObtained)

	cached, _ := cache.GetResult(ctx, iv.ID)
	assert.Nil(t, cached, "aggregate computed before the second submission stays uncached")

	fresh, err := svc.Result(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.OverallObtained)
	cached, _ = cache.GetResult(ctx, iv.ID)
	require.NotNil(t, cached)
	assert.Equal(t, 5, cached.OverallObtained)
}

func TestGenerateReport_NoRenderer(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	f := setup(t, nil, scoring.PolicyAppend, logger)
	svc := NewService(Deps{
		Store:     f.store,
		Generator: questions.NewGenerator(nil, logger),
		Evaluator: evaluation.NewEvaluator(nil, logger),
		Logger:    logger,
	}, Options{})
	iv, err := svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)

	_, err = svc.GenerateReport(ctx, uuid.New(), iv.ID)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.GenerateReport(ctx, f.owner, uuid.New())
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.GenerateReport(ctx, f.owner, iv.ID)
	require.Error(t, err)
	assert.NotErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "no report renderer")
}

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)
	_, err = f.svc.SubmitTranscript(ctx, f.owner, iv.ID, 0, words(40))
	require.NoError(t, err)

	first, err := f.svc.GenerateReport(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	second, err := f.svc.GenerateReport(ctx, f.owner, iv.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.ArtifactPath, second.ArtifactPath)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.InDelta(t, 40.0, first.OverallScore, 1e-9)

	page, err := os.ReadFile(first.ArtifactPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Interview Report - ID "+iv.ID.String())
	assert.Contains(t, string(page), words(40))
	assert.Equal(t, f.reportDir, filepath.Dir(first.ArtifactPath))

	reports, err := f.svc.Reports(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, 2, f.publisher.count(events.ReportGenerated))

	_, err = f.svc.GenerateReport(ctx, uuid.New(), iv.ID)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRecordAnswer_DoesNotScore(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, scoring.PolicyAppend, zaptest.NewLogger(t))
	iv, err := f.svc.StartWithSkills(ctx, f.owner, types.SkillSet{"Go"}, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.RecordAnswer(ctx, f.owner, iv.ID, 3, "draft"))

	scores, err := f.store.ListScores(ctx, iv.ID)
	require.NoError(t, err)
	assert.Empty(t, scores)

	progress, err := f.svc.Progress(ctx, f.owner, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Answered)
	assert.Equal(t, 0, progress.NextIndex)
}

func TestProgressOf(t *testing.T) {
	text := "answer"
	iv := &types.Interview{Questions: []types.QuestionSpec{{Question: "a"}, {Question: "b"}, {Question: "c"}}}

	tests := []struct {
		name     string
		answers  []types.Answer
		state    types.SessionState
		answered int
		next     int
	}{
		{name: "placeholders only", answers: []types.Answer{{QuestionText: "a"}, {QuestionText: "b"}}, state: types.StateCreated, next: 0},
		{name: "middle answered", answers: []types.Answer{{QuestionText: "b", AnswerText: &text}}, state: types.StateInProgress, answered: 1, next: 0},
		{name: "first answered", answers: []types.Answer{{QuestionText: "a", AnswerText: &text}}, state: types.StateInProgress, answered: 1, next: 1},
		{name: "all answered", answers: []types.Answer{{QuestionText: "a", AnswerText: &text}, {QuestionText: "b", AnswerText: &text}, {QuestionText: "c", AnswerText: &text}}, state: types.StateComplete, answered: 3, next: 3},
		{name: "unknown question ignored", answers: []types.Answer{{QuestionText: "z", AnswerText: &text}}, state: types.StateCreated, next: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProgressOf(iv, tt.answers)
			assert.Equal(t, tt.state, p.State)
			assert.Equal(t, tt.answered, p.Answered)
			assert.Equal(t, tt.next, p.NextIndex)
			assert.Equal(t, 3, p.Total)
		})
	}
}
