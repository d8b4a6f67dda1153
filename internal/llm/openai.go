package llm

import (
	"context"
	"encoding/json"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements Client for the OpenAI chat completions API and
// compatible gateways.
type OpenAIClient struct {
	config    *Config
	transport *httpTransport
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg *Config) *OpenAIClient {
	cfg = cfg.normalized()
	return &OpenAIClient{
		config:    cfg,
		transport: newHTTPTransport(ProviderOpenAI, cfg, openAIErrorMessage),
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string, opts Options) (string, error) {
	callCtx, cancel := withTimeout(ctx, c.config)
	defer cancel()

	req := openAIRequest{
		Model:       c.config.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if system != "" {
		req.Messages = append(req.Messages, openAIMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, openAIMessage{Role: "user", Content: prompt})
	if opts.JSONMode {
		req.ResponseFormat = &openAIFormat{Type: "json_object"}
	}

	headers := map[string]string{"Authorization": "Bearer " + c.config.APIKey}

	var resp openAIResponse
	if err := c.transport.postJSON(callCtx, c.url(), headers, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: ProviderOpenAI, Kind: KindMalformed, Message: "no choices in response"}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ProviderError{Provider: ProviderOpenAI, Kind: KindMalformed, Message: "empty completion"}
	}
	return text, nil
}

// Name implements Client.
func (c *OpenAIClient) Name() Provider { return ProviderOpenAI }

// Close implements Client.
func (c *OpenAIClient) Close() error { return nil }

func (c *OpenAIClient) url() string {
	base := c.config.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func openAIErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Error.Message
}
