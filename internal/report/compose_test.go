package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/scoring"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCompose(t *testing.T) {
	id := uuid.MustParse("6f1c2d9e-8a51-4a0b-9a43-1d1b2f9c0e11")
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	generated := created.Add(2 * time.Hour)

	interview := &types.Interview{ID: id, Type: "behavioral", CreatedAt: created}
	answers := []types.Answer{
		{QuestionIndex: 2, Skill: "Sql", QuestionText: "Explain joins.", AnswerText: strPtr("Inner and outer joins.")},
		{QuestionIndex: 0, Skill: "Python", QuestionText: "What is a generator?", AnswerText: strPtr("A lazy iterator.")},
		{QuestionIndex: 1, Skill: "Python", QuestionText: "What is the GIL?", AnswerText: strPtr("   ")},
		{QuestionIndex: 3, Skill: "Sql", QuestionText: "What is an index?"},
	}
	agg := scoring.Aggregate([]types.ScoreEntry{
		{Skill: "Python", ScoreObtained: 4, ScoreTotal: 5},
		{Skill: "Python", ScoreObtained: 0, ScoreTotal: 5},
		{Skill: "Sql", ScoreObtained: 3, ScoreTotal: 5},
	})

	doc := Compose(interview, answers, agg, generated)

	assert.Equal(t, id, doc.InterviewID)
	assert.Equal(t, "Interview Report - ID 6f1c2d9e-8a51-4a0b-9a43-1d1b2f9c0e11", doc.Title)
	assert.Equal(t, created, doc.Date)
	assert.Equal(t, generated, doc.GeneratedAt)
	assert.Equal(t, []string{
		"Interview ID: 6f1c2d9e-8a51-4a0b-9a43-1d1b2f9c0e11",
		"Date: 2026-03-14 09:30 UTC",
		"Type: behavioral",
	}, doc.HeaderLines)
	assert.Equal(t, []string{"Python: 4/10 (40.00%)", "Sql: 3/5 (60.00%)"}, doc.SkillLines)
	assert.Equal(t, "Overall: 7/15 (46.67%)", doc.OverallLine)

	require.Len(t, doc.Transcripts, 2)
	assert.Equal(t, 0, doc.Transcripts[0].Index)
	assert.Equal(t, "A lazy iterator.", doc.Transcripts[0].Answer)
	assert.Equal(t, 2, doc.Transcripts[1].Index)
	assert.Equal(t, "Explain joins.", doc.Transcripts[1].Question)

	// caller's slice order is untouched
	assert.Equal(t, 2, answers[0].QuestionIndex)
}

func TestCompose_NoScores(t *testing.T) {
	interview := &types.Interview{ID: uuid.New(), CreatedAt: time.Now()}

	doc := Compose(interview, nil, scoring.Aggregate(nil), time.Now())

	assert.Equal(t, "Overall: 0/0 (0.00%)", doc.OverallLine)
	assert.Empty(t, doc.SkillLines)
	assert.Empty(t, doc.Transcripts)
	assert.Equal(t, "Type: technical", doc.HeaderLines[2])
}
