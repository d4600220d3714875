package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/types"
)

// General is the label used when nothing in the vocabulary matches.
const General = "General"

// Extractor maps résumé text onto a SkillSet.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor returns an Extractor over vocab, or the default vocabulary when vocab is nil.
func NewExtractor(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Extract returns every vocabulary label found in text as a whole word, in vocabulary
// order and display-capitalized. It never returns an empty set.
func (e *Extractor) Extract(text string) types.SkillSet {
	folded := strings.ToLower(text)

	var found types.SkillSet
	for i, label := range e.vocab.labels {
		if e.vocab.patterns[i].MatchString(folded) {
			found = append(found, DisplayLabel(label))
		}
	}

	if len(found) == 0 {
		return types.SkillSet{General}
	}
	return found
}

// Extract runs the default extractor.
func Extract(text string) types.SkillSet {
	return NewExtractor(nil).Extract(text)
}

// DisplayLabel upper-cases the first letter and lower-cases the rest ("postgres" -> "Postgres").
func DisplayLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + strings.ToLower(label[size:])
}

// Normalize cleans a caller-supplied skill list: trims, drops blanks and
// case-insensitive duplicates, and falls back to General when nothing is left.
// Labels keep the caller's spelling.
func Normalize(labels []string) types.SkillSet {
	seen := make(map[string]bool, len(labels))
	var out types.SkillSet
	for _, label := range labels {
		label = strings.TrimSpace(label)
		key := strings.ToLower(label)
		if label == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	if len(out) == 0 {
		return types.SkillSet{General}
	}
	return out
}
