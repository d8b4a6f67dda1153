package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(p Provider, baseURL string) *Config {
	cfg := DefaultConfig(p)
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	cfg.RetryBackoff = time.Millisecond
	return cfg
}

func writeOpenAIContent(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}, "finish_reason": "stop"},
		},
	})
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeOpenAIContent(w, "  {\"organizationName\": \"Acme\"}  ")
	}))
	defer srv.Close()

	client := NewOpenAIClient(newTestConfig(ProviderOpenAI, srv.URL))
	out, err := client.Complete(context.Background(), "be factual", "extract", Options{Temperature: 0.1, MaxTokens: 1500, JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, `{"organizationName": "Acme"}`, out)

	assert.Equal(t, "gpt-4-turbo-preview", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	assert.Equal(t, 1500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be factual", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenAIClient_NoJSONModeOmitsFormat(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeOpenAIContent(w, "Dear Applicant,")
	}))
	defer srv.Close()

	client := NewOpenAIClient(newTestConfig(ProviderOpenAI, srv.URL))
	_, err := client.Complete(context.Background(), "", "write", Options{Temperature: 0.4})
	require.NoError(t, err)
	assert.NotContains(t, raw, "response_format")
	assert.Len(t, raw["messages"], 1)
}

func TestOpenAIClient_AuthErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(newTestConfig(ProviderOpenAI, srv.URL))
	_, err := client.Complete(context.Background(), "", "x", Options{})
	require.Error(t, err)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindAuth, pe.Kind)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, "Incorrect API key provided", pe.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeOpenAIContent(w, "ok")
	}))
	defer srv.Close()

	client := NewOpenAIClient(newTestConfig(ProviderOpenAI, srv.URL))
	out, err := client.Complete(context.Background(), "", "x", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAIClient_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := newTestConfig(ProviderOpenAI, srv.URL)
	cfg.MaxRetries = 1
	client := NewOpenAIClient(cfg)
	_, err := client.Complete(context.Background(), "", "x", Options{})

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindUpstream, pe.Kind)
	assert.Equal(t, "Bad Gateway", pe.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIClient_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no choices", `{"choices": []}`},
		{"empty content", `{"choices": [{"message": {"content": "   "}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewOpenAIClient(newTestConfig(ProviderOpenAI, srv.URL))
			_, err := client.Complete(context.Background(), "", "x", Options{})
			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, KindMalformed, pe.Kind)
		})
	}
}

func TestOpenAIClient_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeOpenAIContent(w, "late")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewOpenAIClient(newTestConfig(ProviderOpenAI, srv.URL))
	_, err := client.Complete(ctx, "", "x", Options{})
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindCanceled, pe.Kind)
}

func TestOpenAIClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := newTestConfig(ProviderOpenAI, srv.URL)
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxRetries = 0
	client := NewOpenAIClient(cfg)

	_, err := client.Complete(context.Background(), "", "x", Options{})
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindTimeout, pe.Kind)
}

func TestOpenAIClient_URL(t *testing.T) {
	c := NewOpenAIClient(&Config{APIKey: "k"})
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", c.url())

	c = NewOpenAIClient(&Config{APIKey: "k", BaseURL: "http://gw/v1/chat/completions/"})
	assert.Equal(t, "http://gw/v1/chat/completions", c.url())
}
