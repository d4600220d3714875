package types

import (
	"time"

	"github.com/google/uuid"
)

// ReportDocument is the composed, render-ready content of an interview report.
type ReportDocument struct {
	InterviewID   uuid.UUID         `json:"interview_id"`
	Title         string            `json:"title"`
	Date          time.Time         `json:"date"`
	InterviewType string            `json:"interview_type"`
	HeaderLines   []string          `json:"header_lines"`
	SkillLines    []string          `json:"skill_lines"`
	OverallLine   string            `json:"overall_line"`
	Aggregate     Aggregate         `json:"aggregate"`
	Transcripts   []TranscriptEntry `json:"transcripts"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// TranscriptEntry is one non-empty answer in the report appendix.
type TranscriptEntry struct {
	Index    int    `json:"index"`
	Skill    string `json:"skill"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
