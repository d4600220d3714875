package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewClient_RequiresCredentials(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, DefaultConfig(), "")
	assert.Error(t, err)

	_, err = NewClient(ctx, &Config{Provider: ProviderGenAI}, " ")
	assert.Error(t, err)

	_, err = NewClient(ctx, &Config{Provider: ProviderVertex}, "")
	assert.Error(t, err, "vertex needs project and location")

	_, err = NewClient(ctx, &Config{Provider: "openai"}, "key")
	assert.Error(t, err)
}

func TestDisabled(t *testing.T) {
	var client Client = Disabled{}

	_, err := client.GenerateJSON(context.Background(), "prompt", TierLite)
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = client.GenerateContent(context.Background(), "prompt", TierLite)
	assert.ErrorIs(t, err, ErrDisabled)

	assert.Equal(t, "", client.GetModel(TierLite))
	assert.NoError(t, client.Close())
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: `{"score": `}, nil, {Text: `3}`}}}},
			nil,
		},
	}

	text, err := ResponseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 3}`, text)

	_, err = ResponseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = ResponseText(nil)
	assert.Error(t, err)
}
