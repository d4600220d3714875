package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuestionSet(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantError bool
	}{
		{
			name: "valid set",
			json: `[{"skill": "Go", "question": "What is a goroutine?", "max_score": 5},
			        {"skill": "SQL", "question": "Explain an index.", "max_score": 5}]`,
		},
		{name: "empty array", json: `[]`, wantError: true},
		{name: "object instead of array", json: `{"skill": "Go"}`, wantError: true},
		{name: "missing question", json: `[{"skill": "Go", "max_score": 5}]`, wantError: true},
		{name: "blank question", json: `[{"skill": "Go", "question": "   ", "max_score": 5}]`, wantError: true},
		{name: "zero max score", json: `[{"skill": "Go", "question": "Why?", "max_score": 0}]`, wantError: true},
		{name: "fractional max score", json: `[{"skill": "Go", "question": "Why?", "max_score": 2.5}]`, wantError: true},
		{name: "max score as string", json: `[{"skill": "Go", "question": "Why?", "max_score": "5"}]`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestionSet(tt.json)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEvaluation(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantError bool
	}{
		{name: "valid", json: `{"score": 4, "feedback": "Solid answer."}`},
		{name: "fractional score", json: `{"score": 3.5, "feedback": "Fine."}`},
		{name: "negative score", json: `{"score": -1, "feedback": "Bad."}`, wantError: true},
		{name: "missing feedback", json: `{"score": 2}`, wantError: true},
		{name: "empty feedback", json: `{"score": 2, "feedback": ""}`, wantError: true},
		{name: "score as string", json: `{"score": "4", "feedback": "ok"}`, wantError: true},
		{name: "array", json: `[{"score": 4, "feedback": "ok"}]`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvaluation(tt.json)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ErrorTypes(t *testing.T) {
	err := ValidateEvaluation(`{"score": 2}`)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.NotEmpty(t, validationErr.Errors)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, err.Error(), "validation failed")

	err = ValidateEvaluation(`{not json`)
	var docErr *DocumentError
	assert.True(t, errors.As(err, &docErr))

	err = Validate("missing.schema.json", `{}`)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "ok"}`))
	assert.Error(t, ValidateJSONString(schema, `{}`))

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(ValidateJSONString(`{"type": 12}`, `{}`), &loadErr))
}
