package classify

import (
	"context"
	"fmt"
	"net/http"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type ProviderConfig struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	RequestID  string
	HTTPClient *http.Client
}

// NewCompleter builds the Completer for cfg.Provider (openai when empty).
func NewCompleter(ctx context.Context, cfg ProviderConfig) (Completer, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			RequestID:  cfg.RequestID,
			HTTPClient: cfg.HTTPClient,
		}), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: cfg.HTTPClient,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
