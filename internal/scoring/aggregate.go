// Package scoring rolls score entries up into per-skill and overall totals.
package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/types"
)

// Policy selects which score entries count towards an aggregate.
type Policy string

const (
	// PolicyAppend counts every entry, including repeated submissions for a question.
	PolicyAppend Policy = "append"
	// PolicyLatest counts only the newest entry per question index.
	PolicyLatest Policy = "latest"
)

// ParsePolicy maps a configuration value onto a Policy. Empty means PolicyAppend.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAppend:
		return PolicyAppend, nil
	case PolicyLatest:
		return PolicyLatest, nil
	default:
		return "", fmt.Errorf("unknown score policy %q", s)
	}
}

// Aggregate groups entries by skill in order of first appearance and sums them.
func Aggregate(entries []types.ScoreEntry) types.Aggregate {
	agg := types.Aggregate{PerSkill: []types.SkillScore{}}
	index := make(map[string]int)

	for _, e := range entries {
		i, ok := index[e.Skill]
		if !ok {
			i = len(agg.PerSkill)
			index[e.Skill] = i
			agg.PerSkill = append(agg.PerSkill, types.SkillScore{Skill: e.Skill})
		}
		agg.PerSkill[i].Obtained += e.ScoreObtained
		agg.PerSkill[i].Total += e.ScoreTotal
		agg.OverallObtained += e.ScoreObtained
		agg.OverallTotal += e.ScoreTotal
	}

	for i := range agg.PerSkill {
		agg.PerSkill[i].Percent = Percent(agg.PerSkill[i].Obtained, agg.PerSkill[i].Total)
	}
	agg.OverallPercent = Percent(agg.OverallObtained, agg.OverallTotal)
	return agg
}

// Apply filters entries according to policy and aggregates what remains.
func Apply(policy Policy, entries []types.ScoreEntry) types.Aggregate {
	if policy == PolicyLatest {
		entries = Latest(entries)
	}
	return Aggregate(entries)
}

// Latest keeps the newest entry for each question index. Entries are assumed to be in
// insertion order; the result preserves the position of each kept entry.
func Latest(entries []types.ScoreEntry) []types.ScoreEntry {
	last := make(map[int]int, len(entries))
	for i, e := range entries {
		last[e.QuestionIndex] = i
	}

	kept := make([]types.ScoreEntry, 0, len(last))
	for i, e := range entries {
		if last[e.QuestionIndex] == i {
			kept = append(kept, e)
		}
	}
	return kept
}

// Percent returns obtained/total*100, or 0 when total is zero.
func Percent(obtained, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(obtained) / float64(total) * 100
}
