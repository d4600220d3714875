// Package interview runs mock interviews: it assigns questions, records and scores
// answers, and produces reports.
package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/events"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/questions"
	"github.com/jonathan/interview-coach/internal/report"
	"github.com/jonathan/interview-coach/internal/scoring"
	"github.com/jonathan/interview-coach/internal/skills"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store is the persistence the service needs.
type Store interface {
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

// QuestionGenerator produces the question set for a new interview. It never fails.
type QuestionGenerator interface {
	Generate(ctx context.Context, skillSet types.SkillSet, count int) []types.QuestionSpec
}

// AnswerEvaluator scores one transcript. It never fails.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, q types.QuestionSpec, transcript string) types.Evaluation
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio types.Audio) (string, error)
}

// Renderer writes a report document and returns the artifact path.
type Renderer interface {
	Render(ctx context.Context, doc types.ReportDocument) (string, error)
}

// ResultCache caches score aggregates. A miss returns nil, nil.
type ResultCache interface {
	GetResult(ctx context.Context, interviewID uuid.UUID) (*types.Aggregate, error)
	SetResult(ctx context.Context, interviewID uuid.UUID, agg *types.Aggregate) error
	Invalidate(ctx context.Context, interviewID uuid.UUID) error
}

// Options tunes the service.
type Options struct {
	QuestionCount int
	DefaultType   string
	ScorePolicy   scoring.Policy
}

// Deps are the collaborators of a Service. Store, Generator and Evaluator are
// required; the rest fall back to no-op implementations.
type Deps struct {
	Store       Store
	Generator   QuestionGenerator
	Evaluator   AnswerEvaluator
	Transcriber Transcriber
	Renderer    Renderer
	Cache       ResultCache
	Publisher   events.Publisher
	Logger      *zap.Logger
}

// Service implements the interview workflow.
type Service struct {
	store       Store
	generator   QuestionGenerator
	evaluator   AnswerEvaluator
	transcriber Transcriber
	renderer    Renderer
	cache       ResultCache
	publisher   events.Publisher
	logger      *zap.Logger
	opts        Options
	now         func() time.Time
}

// NewService creates a Service.
func NewService(deps Deps, opts Options) *Service {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = questions.DefaultCount
	}
	if strings.TrimSpace(opts.DefaultType) == "" {
		opts.DefaultType = types.DefaultInterviewType
	}
	if opts.ScorePolicy == "" {
		opts.ScorePolicy = scoring.PolicyAppend
	}

	s := &Service{
		store:       deps.Store,
		generator:   deps.Generator,
		evaluator:   deps.Evaluator,
		transcriber: deps.Transcriber,
		renderer:    deps.Renderer,
		cache:       deps.Cache,
		publisher:   deps.Publisher,
		logger:      logging.OrNop(deps.Logger),
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if s.transcriber == nil {
		s.transcriber = noTranscriber{}
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	if s.publisher == nil {
		s.publisher = events.Dummy{}
	}
	return s
}

// Start begins an interview using the skills of the owner's résumé.
func (s *Service) Start(ctx context.Context, owner uuid.UUID, interviewType string) (*types.Interview, error) {
	resume, err := s.store.GetResume(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}
	if resume == nil {
		return nil, &ResumeMissingError{UserID: owner}
	}
	return s.StartWithSkills(ctx, owner, resume.Skills, interviewType)
}

// StartWithSkills begins an interview for an explicit skill set. The interview and one
// unanswered placeholder per question are stored together.
func (s *Service) StartWithSkills(ctx context.Context, owner uuid.UUID, skillSet types.SkillSet, interviewType string) (*types.Interview, error) {
	interviewType = strings.TrimSpace(interviewType)
	if interviewType == "" {
		interviewType = s.opts.DefaultType
	}
	skillSet = skills.Normalize(skillSet)

	iv := &types.Interview{
		ID:        uuid.New(),
		OwnerID:   owner,
		Type:      interviewType,
		CreatedAt: s.now(),
		Questions: s.generator.Generate(ctx, skillSet, s.opts.QuestionCount),
	}
	if err := s.store.CreateInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	s.logger.Info("interview started",
		append(logging.InterviewFields(owner, iv.ID),
			zap.Strings("skills", skillSet),
			zap.Int("questions", len(iv.Questions)),
			zap.String("type", interviewType),
		)...,
	)
	s.publish(ctx, events.New(events.InterviewStarted, owner, iv.ID, map[string]any{
		"skills":         skillSet,
		"question_count": len(iv.Questions),
		"type":           interviewType,
	}))
	return iv, nil
}

// Question returns question index of the interview, or a view marked Complete once
// index runs past the last question.
func (s *Service) Question(ctx context.Context, owner, id uuid.UUID, index int) (*types.QuestionView, error) {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	total := iv.QuestionCount()
	if index < 0 {
		return nil, &InvalidIndexError{Index: index, Count: total}
	}
	view := &types.QuestionView{Index: index, Total: total}
	if index >= total {
		view.Complete = true
		return view, nil
	}
	q := iv.Questions[index]
	view.Question = &q

	answer, err := s.store.GetAnswer(ctx, iv.ID, q.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	view.Answered = answer != nil && answer.Answered()
	return view, nil
}

// RecordAnswer stores transcript as the answer to question index without scoring it.
func (s *Service) RecordAnswer(ctx context.Context, owner, id uuid.UUID, index int, transcript string) error {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return err
	}
	q, err := questionAt(iv, index)
	if err != nil {
		return err
	}
	return s.record(ctx, iv, index, q, transcript)
}

// SubmitAnswer transcribes audio and then records and scores it. A failed transcription
// is logged and scored as an empty answer.
func (s *Service) SubmitAnswer(ctx context.Context, owner, id uuid.UUID, index int, audio types.Audio) (*types.Submission, error) {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	q, err := questionAt(iv, index)
	if err != nil {
		return nil, err
	}

	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		terr := &TranscriptionError{Message: "using empty transcript", Cause: err}
		s.logger.Warn("transcription failed",
			append(logging.QuestionFields(iv.ID, index, q.Skill),
				zap.Error(terr),
				zap.Int("audio_bytes", len(audio.Data)),
			)...,
		)
		transcript = ""
	}
	return s.submit(ctx, iv, index, q, strings.TrimSpace(transcript))
}

// SubmitTranscript records and scores a typed answer.
func (s *Service) SubmitTranscript(ctx context.Context, owner, id uuid.UUID, index int, transcript string) (*types.Submission, error) {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	q, err := questionAt(iv, index)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, iv, index, q, strings.TrimSpace(transcript))
}

func (s *Service) submit(ctx context.Context, iv *types.Interview, index int, q types.QuestionSpec, transcript string) (*types.Submission, error) {
	prior, err := s.store.GetAnswer(ctx, iv.ID, q.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer: %w", err)
	}
	wasAnswered := prior != nil && prior.Answered()

	if err := s.record(ctx, iv, index, q, transcript); err != nil {
		return nil, err
	}

	eval := s.evaluator.Evaluate(ctx, q, transcript)
	entry := &types.ScoreEntry{
		InterviewID:   iv.ID,
		QuestionIndex: index,
		Skill:         q.Skill,
		ScoreObtained: eval.Score,
		ScoreTotal:    q.MaxScore,
		Feedback:      eval.Feedback,
		CreatedAt:     s.now(),
	}
	if err := s.store.AppendScore(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append score: %w", err)
	}
	if err := s.cache.Invalidate(ctx, iv.ID); err != nil {
		s.logger.Warn("failed to invalidate cached result", zap.Error(err), zap.String(logging.FieldInterviewID, iv.ID.String()))
	}

	s.logger.Info("answer evaluated",
		append(logging.QuestionFields(iv.ID, index, q.Skill),
			zap.Int("score", eval.Score),
			zap.Int("max_score", q.MaxScore),
			zap.Bool("fallback", eval.Fallback),
			zap.Int("transcript_chars", len(transcript)),
		)...,
	)
	s.publish(ctx, events.New(events.AnswerEvaluated, iv.OwnerID, iv.ID, map[string]any{
		"index":     index,
		"skill":     q.Skill,
		"score":     eval.Score,
		"max_score": q.MaxScore,
	}))

	progress, err := s.progress(ctx, iv)
	if err != nil {
		return nil, err
	}
	complete := progress.State == types.StateComplete
	if complete && !wasAnswered {
		s.logger.Info("interview complete", logging.InterviewFields(iv.OwnerID, iv.ID)...)
		s.publish(ctx, events.New(events.InterviewCompleted, iv.OwnerID, iv.ID, map[string]any{
			"question_count": progress.Total,
		}))
	}

	return &types.Submission{
		Index:      index,
		Transcript: transcript,
		Score:      eval.Score,
		MaxScore:   q.MaxScore,
		Feedback:   eval.Feedback,
		Complete:   complete,
	}, nil
}

func (s *Service) record(ctx context.Context, iv *types.Interview, index int, q types.QuestionSpec, transcript string) error {
	answer := &types.Answer{
		InterviewID:   iv.ID,
		QuestionIndex: index,
		QuestionText:  q.Question,
		AnswerText:    &transcript,
		Skill:         q.Skill,
		MaxScore:      q.MaxScore,
		UpdatedAt:     s.now(),
	}
	if err := s.store.SaveAnswer(ctx, answer); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

// Progress reports the derived state of an interview and the next unanswered index.
func (s *Service) Progress(ctx context.Context, owner, id uuid.UUID) (*types.Progress, error) {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.progress(ctx, iv)
}

func (s *Service) progress(ctx context.Context, iv *types.Interview) (*types.Progress, error) {
	answers, err := s.store.ListAnswers(ctx, iv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return ProgressOf(iv, answers), nil
}

// ProgressOf derives progress from the stored answers. A question counts as answered
// once its answer row carries text, even an empty transcript.
func ProgressOf(iv *types.Interview, answers []types.Answer) *types.Progress {
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		if a.Answered() {
			answered[a.QuestionText] = true
		}
	}

	total := iv.QuestionCount()
	p := &types.Progress{Total: total, NextIndex: total}
	for i, q := range iv.Questions {
		if answered[q.Question] {
			p.Answered++
		} else if p.NextIndex == total {
			p.NextIndex = i
		}
	}
	p.State = types.DeriveState(p.Answered, total)
	return p
}

// Result aggregates the interview's score entries under the configured policy.
func (s *Service) Result(ctx context.Context, owner, id uuid.UUID) (*types.Aggregate, error) {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.GetResult(ctx, iv.ID)
	if err != nil {
		s.logger.Warn("failed to read cached result", zap.Error(err), zap.String(logging.FieldInterviewID, iv.ID.String()))
	} else if cached != nil {
		return cached, nil
	}

	entries, err := s.store.ListScores(ctx, iv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	agg := scoring.Apply(s.opts.ScorePolicy, entries)

	if err := s.cache.SetResult(ctx, iv.ID, &agg); err != nil {
		s.logger.Warn("failed to cache result", zap.Error(err), zap.String(logging.FieldInterviewID, iv.ID.String()))
	} else {
		s.dropIfStale(ctx, iv.ID, len(entries))
	}
	return &agg, nil
}

// dropIfStale removes a just-cached aggregate when scores were appended after it was
// computed. A submission's own invalidation may have run before the write.
func (s *Service) dropIfStale(ctx context.Context, id uuid.UUID, computedFrom int) {
	if _, ok := s.cache.(noCache); ok {
		return
	}
	entries, err := s.store.ListScores(ctx, id)
	if err == nil && len(entries) == computedFrom {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate stale result", zap.Error(err), zap.String(logging.FieldInterviewID, id.String()))
	}
}

// GenerateReport composes and renders a new report and records it. Every call produces
// a new artifact.
func (s *Service) GenerateReport(ctx context.Context, owner, id uuid.UUID) (*types.Report, error) {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, fmt.Errorf("no report renderer configured")
	}

	var (
		answers []types.Answer
		entries []types.ScoreEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if answers, err = s.store.ListAnswers(gctx, iv.ID); err != nil {
			return fmt.Errorf("failed to list answers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if entries, err = s.store.ListScores(gctx, iv.ID); err != nil {
			return fmt.Errorf("failed to list scores: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := scoring.Apply(s.opts.ScorePolicy, entries)
	doc := report.Compose(iv, answers, agg, s.now())

	path, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	rep := &types.Report{
		ID:           uuid.New(),
		InterviewID:  iv.ID,
		OverallScore: agg.OverallPercent,
		ArtifactPath: path,
		GeneratedAt:  doc.GeneratedAt,
	}
	if err := s.store.CreateReport(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}

	s.logger.Info("report generated",
		append(logging.InterviewFields(owner, iv.ID),
			zap.String("path", path),
			zap.Float64("overall_percent", agg.OverallPercent),
		)...,
	)
	s.publish(ctx, events.New(events.ReportGenerated, owner, iv.ID, map[string]any{
		"report_id":     rep.ID,
		"artifact_path": path,
		"overall_score": rep.OverallScore,
	}))
	return rep, nil
}

// List returns the owner's interviews, newest first.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]types.Interview, error) {
	interviews, err := s.store.ListInterviews(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return interviews, nil
}

// Reports returns every report generated for an interview, oldest first.
func (s *Service) Reports(ctx context.Context, owner, id uuid.UUID) ([]types.Report, error) {
	iv, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	reports, err := s.store.ListReports(ctx, iv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Get returns an interview owned by owner.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*types.Interview, error) {
	return s.load(ctx, owner, id)
}

func (s *Service) load(ctx context.Context, owner, id uuid.UUID) (*types.Interview, error) {
	iv, err := s.store.GetInterview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if iv == nil || iv.OwnerID != owner {
		return nil, &NotFoundError{InterviewID: id}
	}
	return iv, nil
}

func questionAt(iv *types.Interview, index int) (types.QuestionSpec, error) {
	if index < 0 || index >= iv.QuestionCount() {
		return types.QuestionSpec{}, &InvalidIndexError{Index: index, Count: iv.QuestionCount()}
	}
	return iv.Questions[index], nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.Error(err),
			zap.String("type", event.Type),
			zap.String(logging.FieldInterviewID, event.InterviewID.String()),
		)
	}
}

type noTranscriber struct{}

func (noTranscriber) Transcribe(context.Context, types.Audio) (string, error) {
	return "", fmt.Errorf("no transcriber configured")
}

type noCache struct{}

func (noCache) GetResult(context.Context, uuid.UUID) (*types.Aggregate, error) { return nil, nil }
func (noCache) SetResult(context.Context, uuid.UUID, *types.Aggregate) error   { return nil }
func (noCache) Invalidate(context.Context, uuid.UUID) error                    { return nil }
