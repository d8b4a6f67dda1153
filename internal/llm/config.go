// Package llm provides the generative-text provider abstraction used for
// proposal extraction and decline drafting.
package llm

import (
	"strings"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// ParseProvider normalizes a provider name. Unknown names default to OpenAI.
func ParseProvider(s string) Provider {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderAnthropic:
		return ProviderAnthropic
	case ProviderGemini:
		return ProviderGemini
	default:
		return ProviderOpenAI
	}
}

// Config holds the settings for a single provider client.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint. Used for proxies and tests.
	BaseURL string
	// Timeout bounds each Complete call. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts for transient failures.
	MaxRetries int
	// RetryBackoff is the wait before the first retry; it doubles per attempt.
	RetryBackoff time.Duration
}

// Defaults
const (
	DefaultTimeout      = 60 * time.Second
	DefaultMaxRetries   = 2
	DefaultRetryBackoff = 500 * time.Millisecond
)

var defaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4-turbo-preview",
	ProviderAnthropic: "claude-3-opus-20240229",
	ProviderGemini:    "gemini-2.5-flash",
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	return defaultModels[p]
}

// DefaultConfig returns the default configuration for a provider.
func DefaultConfig(p Provider) *Config {
	return &Config{
		Provider:     p,
		Model:        DefaultModel(p),
		Timeout:      DefaultTimeout,
		MaxRetries:   DefaultMaxRetries,
		RetryBackoff: DefaultRetryBackoff,
	}
}

// Configured reports whether the config has enough to reach a provider.
func (c *Config) Configured() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}

func (c *Config) normalized() *Config {
	cp := *c
	if cp.Provider == "" {
		cp.Provider = ProviderOpenAI
	}
	if cp.Model == "" {
		cp.Model = DefaultModel(cp.Provider)
	}
	if cp.Timeout <= 0 {
		cp.Timeout = DefaultTimeout
	}
	if cp.MaxRetries < 0 {
		cp.MaxRetries = 0
	}
	if cp.RetryBackoff <= 0 {
		cp.RetryBackoff = DefaultRetryBackoff
	}
	return &cp
}
