package logging

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Structured field keys shared by every component.
const (
	FieldInterviewID   = "interview_id"
	FieldOwnerID       = "owner_id"
	FieldUserID        = "user_id"
	FieldQuestionIndex = "question_index"
	FieldSkill         = "skill"
	FieldProvider      = "llm_provider"
	FieldModel         = "llm_model"
)

// WithFields attaches fields to logger, tolerating a nil logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// InterviewFields identifies an interview and its owner.
func InterviewFields(owner, interviewID uuid.UUID) []zap.Field {
	return []zap.Field{
		zap.String(FieldOwnerID, owner.String()),
		zap.String(FieldInterviewID, interviewID.String()),
	}
}

// QuestionFields identifies a single question within an interview.
func QuestionFields(interviewID uuid.UUID, index int, skill string) []zap.Field {
	fields := []zap.Field{
		zap.String(FieldInterviewID, interviewID.String()),
		zap.Int(FieldQuestionIndex, index),
	}
	if skill != "" {
		fields = append(fields, zap.String(FieldSkill, skill))
	}
	return fields
}

// ModelFields describes the LLM provider and model, skipping empty values.
func ModelFields(provider, model string) []zap.Field {
	var fields []zap.Field
	if provider != "" {
		fields = append(fields, zap.String(FieldProvider, provider))
	}
	if model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}
	return fields
}
