package llm

import (
	"context"
	"encoding/json"
	"strings"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
	// anthropicJSONInstruction stands in for a JSON response mode, which the
	// messages API does not have.
	anthropicJSONInstruction = "Always respond with valid JSON."
)

// AnthropicClient implements Client for the Anthropic messages API.
type AnthropicClient struct {
	config    *Config
	transport *httpTransport
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(cfg *Config) *AnthropicClient {
	cfg = cfg.normalized()
	return &AnthropicClient{
		config:    cfg,
		transport: newHTTPTransport(ProviderAnthropic, cfg, anthropicErrorMessage),
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string, opts Options) (string, error) {
	callCtx, cancel := withTimeout(ctx, c.config)
	defer cancel()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	if opts.JSONMode && !strings.Contains(system, anthropicJSONInstruction) {
		system = strings.TrimSpace(system + " " + anthropicJSONInstruction)
	}

	req := anthropicRequest{
		Model:       c.config.Model,
		MaxTokens:   maxTokens,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		System:      system,
		Temperature: opts.Temperature,
	}
	headers := map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := c.transport.postJSON(callCtx, c.url(), headers, req, &resp); err != nil {
		return "", err
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", &ProviderError{Provider: ProviderAnthropic, Kind: KindMalformed, Message: "no text content in response"}
	}
	return text, nil
}

// Name implements Client.
func (c *AnthropicClient) Name() Provider { return ProviderAnthropic }

// Close implements Client.
func (c *AnthropicClient) Close() error { return nil }

func (c *AnthropicClient) url() string {
	base := c.config.BaseURL
	if base == "" {
		base = defaultAnthropicBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/v1/messages"
}

func anthropicErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Error.Message
}
