package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.SkillSet
	}{
		{name: "empty text", text: "", want: types.SkillSet{"General"}},
		{name: "no vocabulary terms", text: "Managed a bakery for ten years", want: types.SkillSet{"General"}},
		{name: "single skill", text: "Built services in Python", want: types.SkillSet{"Python"}},
		{name: "case insensitive", text: "PYTHON and DoCkEr", want: types.SkillSet{"Python", "Docker"}},
		{
			name: "vocabulary order not text order",
			text: "kubernetes, react, python",
			want: types.SkillSet{"Python", "React", "Kubernetes"},
		},
		{name: "java is not javascript", text: "JavaScript frontends", want: types.SkillSet{"Javascript"}},
		{name: "sql is not mysql", text: "Tuned MySQL replicas", want: types.SkillSet{"Mysql"}},
		{name: "symbols in labels", text: "Wrote C++ and C# tooling", want: types.SkillSet{"C++", "C#"}},
		{name: "label at end of text", text: "Ten years of c++", want: types.SkillSet{"C++"}},
		{name: "punctuation boundaries", text: "(aws)/node.js", want: types.SkillSet{"Node", "Aws"}},
		{name: "substring inside word", text: "pythonic awsome", want: types.SkillSet{"General"}},
		{name: "repeated mention once", text: "python python python", want: types.SkillSet{"Python"}},
		{name: "accented letter glued after", text: "pythonä", want: types.SkillSet{"General"}},
		{name: "accented letter glued before", text: "éjava", want: types.SkillSet{"General"}},
		{name: "non-latin letter glued", text: "dockerЖ", want: types.SkillSet{"General"}},
		{name: "accented word nearby", text: "ä python, développeur", want: types.SkillSet{"Python"}},
		{name: "unicode digit glued", text: "sql٣", want: types.SkillSet{"General"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestExtract_NeverEmpty(t *testing.T) {
	for _, text := range []string{"", " ", "\n\t", "1234", "ünïcødé"} {
		assert.NotEmpty(t, Extract(text))
	}
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Postgres", DisplayLabel("postgres"))
	assert.Equal(t, "Mongodb", DisplayLabel("MongoDB"))
	assert.Equal(t, "C++", DisplayLabel("c++"))
	assert.Equal(t, "", DisplayLabel("  "))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, types.SkillSet{"General"}, Normalize(nil))
	assert.Equal(t, types.SkillSet{"General"}, Normalize([]string{" ", ""}))
	assert.Equal(t, types.SkillSet{"Python", "Go"}, Normalize([]string{" Python", "python", "Go"}))
}

func TestNewVocabulary(t *testing.T) {
	v, err := NewVocabulary([]string{"Go", "go", " rust ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, v.Labels())

	_, err = NewVocabulary([]string{" "})
	assert.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()

	listPath := filepath.Join(dir, "list.yaml")
	require.NoError(t, os.WriteFile(listPath, []byte("- go\n- rust\n"), 0o600))

	mapPath := filepath.Join(dir, "map.yaml")
	require.NoError(t, os.WriteFile(mapPath, []byte("skills:\n  - terraform\n  - go\n"), 0o600))

	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte("skills: []\n"), 0o600))

	v, err := LoadVocabulary(listPath)
	require.NoError(t, err)
	assert.Equal(t, types.SkillSet{"Go", "Rust"}, NewExtractor(v).Extract("Rust and Go services"))

	v, err = LoadVocabulary(mapPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"terraform", "go"}, v.Labels())

	_, err = LoadVocabulary(emptyPath)
	assert.Error(t, err)

	_, err = LoadVocabulary(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
