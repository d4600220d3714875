// Package evaluation scores a transcribed answer against its question.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

// FallbackFeedback accompanies every heuristic score.
const FallbackFeedback = "Automated fallback feedback."

// wordsPerPoint is how many words the heuristic needs for each point.
const wordsPerPoint = 20

// fallbackCeiling caps the heuristic score regardless of the question's max score.
const fallbackCeiling = 5

// GenerationError explains why a model evaluation was discarded. It is only logged.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("evaluation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Evaluator grades transcripts with the LLM and falls back to a word-count heuristic.
type Evaluator struct {
	client llm.Client
	logger *zap.Logger
}

// NewEvaluator returns an Evaluator. A nil client always takes the fallback path.
func NewEvaluator(client llm.Client, logger *zap.Logger) *Evaluator {
	if client == nil {
		client = llm.Disabled{}
	}
	return &Evaluator{client: client, logger: logging.OrNop(logger)}
}

// Evaluate returns a score in [0, q.MaxScore] and feedback. It never fails.
func (e *Evaluator) Evaluate(ctx context.Context, q types.QuestionSpec, transcript string) types.Evaluation {
	maxScore := q.MaxScore
	if maxScore <= 0 {
		maxScore = types.DefaultMaxScore
	}

	eval, err := e.evaluate(ctx, q.Question, transcript, maxScore)
	if err != nil {
		e.logger.Warn("using fallback evaluation",
			zap.Error(err),
			zap.String(logging.FieldSkill, q.Skill),
			zap.String("question", logging.Truncate(q.Question, 80)),
		)
		return Fallback(transcript, maxScore)
	}
	return eval
}

func (e *Evaluator) evaluate(ctx context.Context, question, transcript string, maxScore int) (types.Evaluation, error) {
	prompt, err := prompts.Render(prompts.KeyEvaluateAnswer, map[string]string{
		"Question": question,
		"Answer":   transcript,
		"MaxScore": strconv.Itoa(maxScore),
	})
	if err != nil {
		return types.Evaluation{}, &GenerationError{Message: "prompt unavailable", Cause: err}
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return types.Evaluation{}, &GenerationError{Message: "model call failed", Cause: err}
	}

	return Parse(raw, maxScore)
}

// Parse validates a model response and converts it to an Evaluation. Scores outside
// [0, maxScore] are rejected rather than clamped; fractional scores are truncated.
func Parse(raw string, maxScore int) (types.Evaluation, error) {
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.ValidateEvaluation(raw); err != nil {
		return types.Evaluation{}, &GenerationError{Message: "response failed schema validation", Cause: err}
	}

	var payload struct {
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return types.Evaluation{}, &GenerationError{Message: "response could not be decoded", Cause: err}
	}

	if payload.Score < 0 || payload.Score > float64(maxScore) {
		return types.Evaluation{}, &GenerationError{
			Message: fmt.Sprintf("score %v outside [0, %d]", payload.Score, maxScore),
		}
	}

	return types.Evaluation{
		Score:    int(payload.Score),
		Feedback: strings.TrimSpace(payload.Feedback),
	}, nil
}

// Fallback scores a transcript by length: one point per 20 words, capped at 5 and at maxScore.
func Fallback(transcript string, maxScore int) types.Evaluation {
	score := WordCount(transcript) / wordsPerPoint
	score = min(score, fallbackCeiling)
	if maxScore > 0 {
		score = min(score, maxScore)
	}
	return types.Evaluation{
		Score:    max(score, 0),
		Feedback: FallbackFeedback,
		Fallback: true,
	}
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
