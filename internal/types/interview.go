package types

import (
	"time"

	"github.com/google/uuid"
)

// DefaultInterviewType is used when a caller does not name one.
const DefaultInterviewType = "technical"

// DefaultMaxScore is the per-question ceiling used by generated and placeholder questions.
const DefaultMaxScore = 5

// SkillSet is an ordered list of distinct, display-capitalized skill labels.
type SkillSet []string

// QuestionSpec is a single generated interview question.
type QuestionSpec struct {
	Skill    string `json:"skill"`
	Question string `json:"question"`
	MaxScore int    `json:"max_score"`
}

// Interview is one interview attempt owned by a single user. Questions never change
// after creation.
type Interview struct {
	ID        uuid.UUID      `json:"id"`
	OwnerID   uuid.UUID      `json:"owner_id"`
	Type      string         `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	Questions []QuestionSpec `json:"questions"`
}

// QuestionCount returns the number of questions in the interview.
func (i *Interview) QuestionCount() int {
	return len(i.Questions)
}

// Answer holds the latest transcript recorded for one question of an interview.
// AnswerText stays nil until the candidate submits something.
type Answer struct {
	ID            int64     `json:"id"`
	InterviewID   uuid.UUID `json:"interview_id"`
	QuestionIndex int       `json:"question_index"`
	QuestionText  string    `json:"question_text"`
	AnswerText    *string   `json:"answer_text"`
	Skill         string    `json:"skill"`
	MaxScore      int       `json:"max_score"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Answered reports whether a transcript has been recorded.
func (a *Answer) Answered() bool {
	return a.AnswerText != nil
}

// Text returns the recorded transcript or "".
func (a *Answer) Text() string {
	if a.AnswerText == nil {
		return ""
	}
	return *a.AnswerText
}

// ScoreEntry is one evaluation outcome. Entries are only ever appended.
type ScoreEntry struct {
	ID            int64     `json:"id"`
	InterviewID   uuid.UUID `json:"interview_id"`
	QuestionIndex int       `json:"question_index"`
	Skill         string    `json:"skill"`
	ScoreObtained int       `json:"score_obtained"`
	ScoreTotal    int       `json:"score_total"`
	Feedback      string    `json:"feedback,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Report is a rendered report artifact. Every generation adds a new record.
type Report struct {
	ID           uuid.UUID `json:"id"`
	InterviewID  uuid.UUID `json:"interview_id"`
	OverallScore float64   `json:"overall_score"`
	ArtifactPath string    `json:"artifact_path"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Resume is the parsed résumé a user uploaded; it is the skill source for new interviews.
type Resume struct {
	UserID           uuid.UUID `json:"user_id"`
	OriginalFilename string    `json:"original_filename"`
	ParsedText       string    `json:"parsed_text"`
	Skills           SkillSet  `json:"skills"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Audio is a recorded spoken answer.
type Audio struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Evaluation is the outcome of scoring one transcript.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Fallback bool   `json:"fallback"`
}

// Submission is returned to the caller after an answer has been recorded and scored.
type Submission struct {
	Index      int    `json:"index"`
	Transcript string `json:"transcript"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"max_score"`
	Feedback   string `json:"feedback"`
	Complete   bool   `json:"complete"`
}
