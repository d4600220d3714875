// Package questions builds the fixed question set for a new interview.
package questions

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
	"github.com/jonathan/interview-coach/internal/skills"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

// DefaultCount is the size of a question set when the caller does not choose one.
const DefaultCount = 15

// Generator asks the LLM for a question set and falls back to placeholders when the
// model is unavailable or returns something unusable.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator returns a Generator. A nil client always takes the fallback path.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	if client == nil {
		client = llm.Disabled{}
	}
	return &Generator{client: client, logger: logging.OrNop(logger)}
}

// Generate returns an ordered question set for skillSet. It never fails.
func (g *Generator) Generate(ctx context.Context, skillSet types.SkillSet, count int) []types.QuestionSpec {
	if count <= 0 {
		count = DefaultCount
	}
	skillSet = skills.Normalize(skillSet)

	set, err := g.generate(ctx, skillSet, count)
	if err != nil {
		g.logger.Warn("using placeholder questions",
			zap.Error(err),
			zap.Strings("skills", skillSet),
			zap.Int("count", count),
		)
		return Fallback(skillSet, count)
	}

	if len(set) != count {
		g.logger.Warn("model returned a different number of questions than requested",
			zap.Int("requested", count),
			zap.Int("returned", len(set)),
		)
	}
	return set
}

func (g *Generator) generate(ctx context.Context, skillSet types.SkillSet, count int) ([]types.QuestionSpec, error) {
	prompt, err := prompts.Render(prompts.KeyGenerateQuestions, map[string]string{
		"Count":  strconv.Itoa(count),
		"Skills": strings.Join(skillSet, ", "),
	})
	if err != nil {
		return nil, &GenerationError{Message: "prompt unavailable", Cause: err}
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &GenerationError{Message: "model call failed", Cause: err}
	}

	return Parse(raw)
}

// Parse validates a model response and decodes it into a question set.
func Parse(raw string) ([]types.QuestionSpec, error) {
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.ValidateQuestionSet(raw); err != nil {
		return nil, &GenerationError{Message: "response failed schema validation", Cause: err}
	}

	var set []types.QuestionSpec
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, &GenerationError{Message: "response could not be decoded", Cause: err}
	}

	seen := make(map[string]bool, len(set))
	for i := range set {
		set[i].Skill = strings.TrimSpace(set[i].Skill)
		set[i].Question = strings.TrimSpace(set[i].Question)
		if seen[set[i].Question] {
			return nil, &GenerationError{Message: fmt.Sprintf("duplicate question at index %d", i)}
		}
		seen[set[i].Question] = true
	}
	return set, nil
}

// Fallback builds count placeholder questions, cycling through skillSet from its first
// entry. It is deterministic and never fails.
func Fallback(skillSet types.SkillSet, count int) []types.QuestionSpec {
	if len(skillSet) == 0 {
		skillSet = types.SkillSet{skills.General}
	}
	if count < 0 {
		count = 0
	}

	set := make([]types.QuestionSpec, count)
	for i := range set {
		skill := skillSet[i%len(skillSet)]
		set[i] = types.QuestionSpec{
			Skill:    skill,
			Question: fmt.Sprintf("Placeholder question #%d for %s", i+1, skill),
			MaxScore: types.DefaultMaxScore,
		}
	}
	return set
}
