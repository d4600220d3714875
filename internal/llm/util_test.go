package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json code block", input: "```json\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "generic code block", input: "```\n[1, 2]\n```", expected: `[1, 2]`},
		{name: "plain JSON", input: `  {"key": "value"}  `, expected: `{"key": "value"}`},
		{name: "preamble before array", input: "Here are your questions:\n[{\"a\": 1}]\nGood luck!", expected: `[{"a": 1}]`},
		{name: "preamble before object", input: "Sure! {\"score\": 4, \"feedback\": \"ok\"}", expected: `{"score": 4, "feedback": "ok"}`},
		{name: "no JSON at all", input: "I cannot help with that", expected: "I cannot help with that"},
		{name: "empty", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
