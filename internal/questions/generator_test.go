package questions

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClient struct {
	response string
	err      error
	prompts  []string
	tiers    []llm.ModelTier
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                  { return nil }

func TestFallback_RoundRobin(t *testing.T) {
	set := Fallback(types.SkillSet{"Python", "Docker", "Aws"}, 15)

	require.Len(t, set, 15)
	for i, q := range set {
		wantSkill := []string{"Python", "Docker", "Aws"}[i%3]
		assert.Equal(t, wantSkill, q.Skill)
		assert.Equal(t, fmt.Sprintf("Placeholder question #%d for %s", i+1, wantSkill), q.Question)
		assert.Equal(t, 5, q.MaxScore)
	}
}

func TestFallback_SingleSkill(t *testing.T) {
	set := Fallback(types.SkillSet{"Python"}, 15)

	require.Len(t, set, 15)
	assert.Equal(t, "Placeholder question #1 for Python", set[0].Question)
	assert.Equal(t, "Placeholder question #15 for Python", set[14].Question)
	for _, q := range set {
		assert.Equal(t, "Python", q.Skill)
	}
}

func TestFallback_Deterministic(t *testing.T) {
	skills := types.SkillSet{"Go", "Sql"}
	assert.Equal(t, Fallback(skills, 7), Fallback(skills, 7))
}

func TestFallback_EmptySkills(t *testing.T) {
	set := Fallback(nil, 2)
	require.Len(t, set, 2)
	assert.Equal(t, "General", set[0].Skill)
	assert.Empty(t, Fallback(types.SkillSet{"Go"}, -3))
}

func TestGenerate_UsesModelResponse(t *testing.T) {
	client := &fakeClient{response: "```json\n" + `[
		{"skill": "Go", "question": "What does the race detector find?", "max_score": 5},
		{"skill": "Docker", "question": "What is a multi-stage build?", "max_score": 5}
	]` + "\n```"}

	set := NewGenerator(client, nil).Generate(context.Background(), types.SkillSet{"Go", "Docker"}, 2)

	require.Len(t, set, 2)
	assert.Equal(t, "Go", set[0].Skill)
	assert.Equal(t, "What is a multi-stage build?", set[1].Question)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Generate 2 interview questions")
	assert.Contains(t, client.prompts[0], "Go, Docker")
	assert.Equal(t, llm.TierStandard, client.tiers[0])
}

func TestGenerate_AcceptsShortSetAndWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := &fakeClient{response: `[{"skill": "Go", "question": "Only one?", "max_score": 5}]`}

	set := NewGenerator(client, zap.New(core)).Generate(context.Background(), types.SkillSet{"Go"}, 15)

	assert.Len(t, set, 1)
	assert.Equal(t, 1, logs.FilterMessageSnippet("different number").Len())
}

func TestGenerate_FallbackPaths(t *testing.T) {
	tests := []struct {
		name   string
		client llm.Client
	}{
		{name: "nil client", client: nil},
		{name: "disabled client", client: llm.Disabled{}},
		{name: "call error", client: &fakeClient{err: errors.New("quota exceeded")}},
		{name: "not JSON", client: &fakeClient{response: "I am unable to comply"}},
		{name: "empty array", client: &fakeClient{response: `[]`}},
		{name: "missing field", client: &fakeClient{response: `[{"skill": "Go", "max_score": 5}]`}},
		{name: "zero max score", client: &fakeClient{response: `[{"skill": "Go", "question": "Why?", "max_score": 0}]`}},
		{
			name: "duplicate questions",
			client: &fakeClient{response: `[{"skill": "Go", "question": "Why?", "max_score": 5},
				{"skill": "Go", "question": "Why?", "max_score": 5}]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			gen := NewGenerator(tt.client, zap.New(core))

			set := gen.Generate(context.Background(), types.SkillSet{"Python"}, 15)

			assert.Equal(t, Fallback(types.SkillSet{"Python"}, 15), set)
			assert.Equal(t, 1, logs.FilterMessage("using placeholder questions").Len())
		})
	}
}

func TestGenerate_DefaultCount(t *testing.T) {
	set := NewGenerator(nil, nil).Generate(context.Background(), nil, 0)

	require.Len(t, set, DefaultCount)
	assert.Equal(t, "Placeholder question #1 for General", set[0].Question)
}

func TestParse_ErrorType(t *testing.T) {
	_, err := Parse(`{"skill": "Go"}`)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Contains(t, genErr.Error(), "schema validation")
}
