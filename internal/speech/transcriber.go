// Package speech converts recorded answers to text.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultMIMEType is assumed when an upload does not declare one.
const DefaultMIMEType = "audio/webm"

// ErrDisabled is returned by Disabled for every call.
var ErrDisabled = errors.New("transcription is disabled")

// ErrEmptyAudio is returned when there is nothing to transcribe.
var ErrEmptyAudio = errors.New("audio is empty")

// Transcriber turns an audio recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio types.Audio) (string, error)
}

// Disabled is a Transcriber that always fails, used when speech is turned off.
type Disabled struct{}

// Transcribe implements Transcriber.
func (Disabled) Transcribe(context.Context, types.Audio) (string, error) {
	return "", ErrDisabled
}

// GeminiTranscriber sends the recording inline to a multimodal Gemini model.
type GeminiTranscriber struct {
	models  *genai.Models
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiTranscriber creates a transcriber backed by the Gemini API.
func NewGeminiTranscriber(ctx context.Context, apiKey, model string, timeout time.Duration, logger *zap.Logger) (*GeminiTranscriber, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("transcription model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiTranscriber{
		models:  client.Models,
		model:   model,
		timeout: timeout,
		logger:  logging.OrNop(logger),
	}, nil
}

// Transcribe implements Transcriber.
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio types.Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrEmptyAudio
	}

	prompt, err := prompts.Render(prompts.KeyTranscribeAnswer, nil)
	if err != nil {
		return "", fmt.Errorf("failed to load transcription prompt: %w", err)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(audio.Data, MIMEType(audio)),
		}, genai.RoleUser),
	}

	start := time.Now()
	resp, err := t.models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text, err := llm.ResponseText(resp)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	t.logger.Debug("audio transcribed",
		zap.String(logging.FieldModel, t.model),
		zap.Int("bytes", len(audio.Data)),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

// MIMEType returns the declared MIME type of audio, or a guess from its filename.
func MIMEType(audio types.Audio) string {
	if mt := strings.TrimSpace(strings.SplitN(audio.MIMEType, ";", 2)[0]); mt != "" && mt != "application/octet-stream" {
		return mt
	}

	name := strings.ToLower(audio.Filename)
	switch {
	case strings.HasSuffix(name, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(name, ".mp3"):
		return "audio/mp3"
	case strings.HasSuffix(name, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(name, ".flac"):
		return "audio/flac"
	case strings.HasSuffix(name, ".m4a"), strings.HasSuffix(name, ".aac"):
		return "audio/aac"
	default:
		return DefaultMIMEType
	}
}
