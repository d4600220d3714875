// Package llm provides the text-generation client abstraction used for question
// generation and answer evaluation.
package llm

import "strings"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short structured judgements such as scoring one answer
	TierLite ModelTier = "lite"
	// TierStandard is for moderate generation such as a full question set
	TierStandard ModelTier = "standard"
	// TierAdvanced is reserved for heavier reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM backend
type Provider string

const (
	// ProviderGemini uses the Gemini API through github.com/google/generative-ai-go
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses the Gemini API through google.golang.org/genai
	ProviderGenAI Provider = "genai"
	// ProviderVertex uses Vertex AI through google.golang.org/genai
	ProviderVertex Provider = "vertex"
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	Project     string // Vertex only
	Location    string // Vertex only
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.2,
	}
}

// FromSettings builds a Config from loosely typed settings, typically the llm section of
// the service configuration. Unknown tiers in models are ignored; missing tiers keep
// their defaults.
func FromSettings(provider string, models map[string]string) *Config {
	cfg := DefaultConfig()
	if p := Provider(strings.ToLower(strings.TrimSpace(provider))); p != "" {
		cfg.Provider = p
	}
	for tier, model := range models {
		t := ModelTier(strings.ToLower(tier))
		switch t {
		case TierLite, TierStandard, TierAdvanced:
			if model = strings.TrimSpace(model); model != "" {
				cfg.Models[t] = model
			}
		}
	}
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the Config with model set for tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return &next
}
