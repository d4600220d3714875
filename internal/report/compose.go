// Package report composes the render-ready content of an interview report.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/interview-coach/internal/types"
)

// DateLayout is used for the header date line.
const DateLayout = "2006-01-02 15:04 MST"

// Compose builds the report document for an interview from its answers and aggregate.
// Answers with an empty transcript are left out of the appendix.
func Compose(interview *types.Interview, answers []types.Answer, agg types.Aggregate, generatedAt time.Time) types.ReportDocument {
	interviewType := interview.Type
	if interviewType == "" {
		interviewType = types.DefaultInterviewType
	}

	doc := types.ReportDocument{
		InterviewID:   interview.ID,
		Title:         fmt.Sprintf("Interview Report - ID %s", interview.ID),
		Date:          interview.CreatedAt,
		InterviewType: interviewType,
		Aggregate:     agg,
		GeneratedAt:   generatedAt,
	}

	doc.HeaderLines = []string{
		fmt.Sprintf("Interview ID: %s", interview.ID),
		fmt.Sprintf("Date: %s", interview.CreatedAt.Format(DateLayout)),
		fmt.Sprintf("Type: %s", interviewType),
	}

	doc.SkillLines = make([]string, 0, len(agg.PerSkill))
	for _, s := range agg.PerSkill {
		doc.SkillLines = append(doc.SkillLines, SkillLine(s))
	}
	doc.OverallLine = OverallLine(agg)
	doc.Transcripts = Transcripts(answers)

	return doc
}

// SkillLine formats one per-skill score line.
func SkillLine(s types.SkillScore) string {
	return fmt.Sprintf("%s: %d/%d (%.2f%%)", s.Skill, s.Obtained, s.Total, s.Percent)
}

// OverallLine formats the overall summary line.
func OverallLine(agg types.Aggregate) string {
	return fmt.Sprintf("Overall: %d/%d (%.2f%%)", agg.OverallObtained, agg.OverallTotal, agg.OverallPercent)
}

// Transcripts returns one appendix entry per non-empty answer, ordered by question index.
func Transcripts(answers []types.Answer) []types.TranscriptEntry {
	sorted := make([]types.Answer, len(answers))
	copy(sorted, answers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QuestionIndex < sorted[j].QuestionIndex
	})

	entries := make([]types.TranscriptEntry, 0, len(sorted))
	for _, a := range sorted {
		text := strings.TrimSpace(a.Text())
		if text == "" {
			continue
		}
		entries = append(entries, types.TranscriptEntry{
			Index:    a.QuestionIndex,
			Skill:    a.Skill,
			Question: a.QuestionText,
			Answer:   text,
		})
	}
	return entries
}
