package llm

import (
	"strings"
	"time"
)

// Provider families understood by litellm.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config contains client configuration, fixed at construction.
type Config struct {
	Provider    string        `json:"provider,omitempty"`
	Model       string        `json:"model"`
	BaseURL     string        `json:"base_url,omitempty"`
	APIKey      string        `json:"api_key"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// DefaultConfig targets a local OpenAI-compatible endpoint such as Ollama.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderOpenAI,
		Model:       "qwen2:1.5b",
		BaseURL:     "http://localhost:11434/v1",
		APIKey:      "noneed",
		Temperature: 0.3,
		MaxTokens:   2048,
	}
}

// ResolveProvider returns the explicit provider or infers it from the model name.
// Unknown models are treated as OpenAI-compatible.
func ResolveProvider(provider, model string) string {
	if p := strings.ToLower(strings.TrimSpace(provider)); p != "" {
		return p
	}
	switch {
	case isAnthropicModel(model):
		return ProviderAnthropic
	case isGeminiModel(model):
		return ProviderGemini
	default:
		return ProviderOpenAI
	}
}

// isAnthropicModel checks if the model is an Anthropic model
func isAnthropicModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "claude")
}

// isGeminiModel checks if the model is a Gemini model
func isGeminiModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "gemini")
}
