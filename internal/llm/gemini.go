package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient calls Google Gemini through the generative-ai-go SDK.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient opens an SDK client authenticated with config.APIKey.
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	config = config.normalized()
	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, system, prompt string, opts Options) (string, error) {
	callCtx, cancel := withTimeout(ctx, c.config)
	defer cancel()

	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if opts.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		if ctxErr := contextError(ProviderGemini, ctx, callCtx.Err()); ctxErr != nil {
			return "", ctxErr
		}
		return "", &ProviderError{Provider: ProviderGemini, Kind: KindUpstream, Message: "generate content", Cause: err}
	}

	text, err := candidateText(resp)
	if err != nil {
		return "", &ProviderError{Provider: ProviderGemini, Kind: KindMalformed, Cause: err}
	}
	return strings.TrimSpace(text), nil
}

// Name implements Client.
func (c *GeminiClient) Name() Provider { return ProviderGemini }

// Close shuts down the SDK client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("reply has no candidates")
	}
	first := resp.Candidates[0]

	var b strings.Builder
	for _, part := range first.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("reply has no text (finish reason %s)", first.FinishReason)
	}
	return b.String(), nil
}
