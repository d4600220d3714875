package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	ClearCache()

	prompt, err := Get(File, KeyGenerateQuestions)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Count}}")
	assert.Contains(t, prompt, "{{.Skills}}")

	_, err = Get("nonexistent.json", KeyGenerateQuestions)
	assert.ErrorContains(t, err, "failed to read prompt file")

	_, err = Get(File, "nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() { MustGet(File, "nonexistent-key") })
	assert.NotPanics(t, func() { MustGet(File, KeyEvaluateAnswer) })
}

func TestFormat(t *testing.T) {
	out := Format("Q: {{.Question}} A: {{.Answer}} {{.Other}}", map[string]string{
		"Question": "What is a goroutine?",
		"Answer":   "A {{.Question}} lookalike",
	})
	assert.Equal(t, "Q: What is a goroutine? A: A {{.Question}} lookalike {{.Other}}", out)
}

func TestRender(t *testing.T) {
	out, err := Render(KeyEvaluateAnswer, map[string]string{
		"Question": "Explain channels",
		"Answer":   "They pass values between goroutines",
		"MaxScore": "5",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Question: Explain channels")
	assert.Contains(t, out, "score (an integer from 0 to 5)")

	_, err = Render(KeyEvaluateAnswer, map[string]string{"Question": "q"})
	assert.ErrorContains(t, err, "Answer")
}

func TestKeys(t *testing.T) {
	keys, err := Keys(File)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyEvaluateAnswer, KeyGenerateQuestions, KeyTranscribeAnswer}, keys)
}
