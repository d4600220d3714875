// Package skills extracts normalized skill labels from résumé text.
package skills

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLabels is the built-in vocabulary, in match order.
var DefaultLabels = []string{
	"python", "java", "c++", "c#", "javascript", "node", "react", "django", "flask",
	"sql", "mysql", "postgres", "mongodb", "aws", "docker", "kubernetes", "spring",
}

// Vocabulary is an ordered list of known skill labels with precompiled matchers.
type Vocabulary struct {
	labels   []string
	patterns []*regexp.Regexp
}

// vocabularyFile is the YAML layout accepted by LoadVocabulary.
type vocabularyFile struct {
	Skills []string `yaml:"skills"`
}

// NewVocabulary lower-cases and de-duplicates labels, keeping first-seen order.
func NewVocabulary(labels []string) (*Vocabulary, error) {
	v := &Vocabulary{}
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		v.labels = append(v.labels, label)
		v.patterns = append(v.patterns, wholeWord(label))
	}
	if len(v.labels) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	return v, nil
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(DefaultLabels)
	if err != nil {
		panic(err)
	}
	return v
}

// LoadVocabulary reads a YAML file holding either a plain list of labels or a
// mapping with a "skills" list.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}

	var labels []string
	if err := yaml.Unmarshal(data, &labels); err != nil {
		var file vocabularyFile
		if err2 := yaml.Unmarshal(data, &file); err2 != nil {
			return nil, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
		}
		labels = file.Skills
	}

	v, err := NewVocabulary(labels)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Labels returns the lower-cased labels in match order.
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// wholeWord matches label when it is not glued to other letters, digits or underscores
// on either side, in any script. Plain \b is not used because it is ASCII-only and
// labels such as "c++" and "c#" end in non-word characters.
func wholeWord(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(label) + `(?:$|[^\p{L}\p{N}_])`)
}
