package logging

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestWithFields_NilLogger(t *testing.T) {
	logger := WithFields(nil, zap.String("k", "v"))
	require.NotNil(t, logger)
	logger.Info("does not panic")
}

func TestInterviewFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	owner, id := uuid.New(), uuid.New()

	WithFields(zap.New(core), InterviewFields(owner, id)...).Info("started")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, owner.String(), ctx[FieldOwnerID])
	assert.Equal(t, id.String(), ctx[FieldInterviewID])
}

func TestQuestionFields_OmitsEmptySkill(t *testing.T) {
	fields := QuestionFields(uuid.New(), 3, "")
	assert.Len(t, fields, 2)

	fields = QuestionFields(uuid.New(), 3, "Go")
	assert.Len(t, fields, 3)
}

func TestModelFields(t *testing.T) {
	assert.Empty(t, ModelFields("", ""))
	assert.Len(t, ModelFields("gemini", ""), 1)
	assert.Len(t, ModelFields("gemini", "gemini-2.5-flash"), 2)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("  abc  ", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
}
