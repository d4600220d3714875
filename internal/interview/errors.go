package interview

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError is returned when an interview does not exist or belongs to someone else.
type NotFoundError struct {
	InterviewID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("interview %s not found", e.InterviewID)
}

// ResumeMissingError is returned when an interview is started before a résumé is on file.
type ResumeMissingError struct {
	UserID uuid.UUID
}

func (e *ResumeMissingError) Error() string {
	return fmt.Sprintf("no résumé on file for user %s", e.UserID)
}

// InvalidIndexError is returned for a question index outside the interview's question set.
type InvalidIndexError struct {
	Index int
	Count int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("question index %d out of range [0, %d)", e.Index, e.Count)
}

// TranscriptionError records a failed transcription. It is logged, never returned;
// the answer proceeds with an empty transcript.
type TranscriptionError struct {
	Message string
	Cause   error
}

func (e *TranscriptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transcription failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transcription failed: %s", e.Message)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}
