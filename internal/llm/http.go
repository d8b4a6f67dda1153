package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// httpTransport posts JSON to a provider endpoint with retry on transient failures.
type httpTransport struct {
	provider   Provider
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	// errorMessage pulls a human-readable message out of a provider error body.
	errorMessage func(body []byte) string
}

func newHTTPTransport(provider Provider, cfg *Config, errorMessage func([]byte) string) *httpTransport {
	return &httpTransport{
		provider:     provider,
		client:       &http.Client{},
		maxRetries:   cfg.MaxRetries,
		backoff:      cfg.RetryBackoff,
		errorMessage: errorMessage,
	}
}

// postJSON sends body to url and decodes a 2xx response into out.
func (t *httpTransport) postJSON(ctx context.Context, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ProviderError{Provider: t.provider, Kind: KindRequest, Message: "encode request", Cause: err}
	}

	wait := t.backoff
	var lastErr *ProviderError
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return contextError(t.provider, ctx, ctx.Err())
			case <-time.After(wait):
			}
			wait *= 2
		}

		lastErr = t.do(ctx, url, headers, payload, out)
		if lastErr == nil {
			return nil
		}
		if !lastErr.Transient() {
			return lastErr
		}
	}
	return lastErr
}

func (t *httpTransport) do(ctx context.Context, url string, headers map[string]string, payload []byte, out any) *ProviderError {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &ProviderError{Provider: t.provider, Kind: KindRequest, Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := contextError(t.provider, ctx, ctx.Err()); ctxErr != nil {
			return ctxErr
		}
		return &ProviderError{Provider: t.provider, Kind: KindNetwork, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if ctxErr := contextError(t.provider, ctx, ctx.Err()); ctxErr != nil {
			return ctxErr
		}
		return &ProviderError{Provider: t.provider, Kind: KindNetwork, Message: "read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if t.errorMessage != nil {
			msg = t.errorMessage(body)
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ProviderError{
			Provider:   t.provider,
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ProviderError{
			Provider:   t.provider,
			Kind:       KindMalformed,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode response (%d bytes)", len(body)),
			Cause:      err,
		}
	}
	return nil
}
