package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"collapses inner spaces", "Experience    at    Acme", "Experience at Acme"},
		{"non-breaking spaces", "Senior\u00a0\u00a0Engineer", "Senior Engineer"},
		{"line endings", "Jane Doe\r\nSoftware Engineer\rBerlin", "Jane Doe\nSoftware Engineer\nBerlin"},
		{"blank line runs", "Skills:\n\n\n\n\nPython", "Skills:\n\nPython"},
		{"keeps headings", "# Jane Doe\n## Skills\nPython", "# Jane Doe\n## Skills\nPython"},
		{"bullets keep spacing", "Experience\n  - Led   a team\n• Go   and  Python", "Experience\n  - Led   a team\n• Go   and  Python"},
		{"indented text", "Acme\n    Built   APIs", "Acme\n    Built APIs"},
		{"trailing whitespace", "Python \t\nSQL   ", "Python\nSQL"},
		{"unicode", "Café, São Paulo 🚀", "Café, São Paulo 🚀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Jane   Doe\n\n\n- Python   developer\r\nBerlin"
	assert.Equal(t, CleanText(input), CleanText(CleanText(input)))
}
