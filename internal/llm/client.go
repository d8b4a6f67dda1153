package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by NewClient when no API key is available.
// Callers treat it as "no provider" and use their deterministic paths.
var ErrNotConfigured = errors.New("llm provider not configured")

// Options constrains a single completion.
type Options struct {
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider to return a single JSON object.
	JSONMode bool
}

// Client is an abstraction over LLM providers.
// Complete returns the generated text or a *ProviderError.
type Client interface {
	Complete(ctx context.Context, system, prompt string, opts Options) (string, error)
	// Name identifies the provider for logs and metrics.
	Name() Provider
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if !config.Configured() {
		return nil, ErrNotConfigured
	}
	cfg := config.normalized()

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	case ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// withTimeout derives the per-call context.
func withTimeout(ctx context.Context, cfg *Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, cfg.Timeout)
}
