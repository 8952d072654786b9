// Package provider implements the LLM backend adapters. Four variants
// share one capability surface: OpenAI, Anthropic, Ollama and
// OpenRouter. Anthropic and OpenRouter are completion-only; their
// Embed fails with domain.ErrUnsupportedProvider rather than falling
// back. HTTP failures map onto the domain error taxonomy and callers
// decide about retries.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

// Provider names accepted by the registry.
const (
	NameOpenAI     = "openai"
	NameAnthropic  = "anthropic"
	NameOllama     = "ollama"
	NameOpenRouter = "openrouter"
)

// Default timeouts shared by all variants.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultTimeout        = 60 * time.Second
)

// newHTTPClients builds the unary client (bounded by timeout) and the
// streaming client (bounded only by the request context, so long
// streams are not cut off mid body).
func newHTTPClients(timeout time.Duration) (unary, streaming *http.Client) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: defaultConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: defaultConnectTimeout,
	}
	return &http.Client{Transport: transport, Timeout: timeout},
		&http.Client{Transport: transport}
}

// classifyStatus maps a non-2xx response onto the domain error
// taxonomy: 401/403 are auth failures, 429 is rate limiting, anything
// else is a provider failure.
func classifyStatus(name string, status int, body []byte) error {
	msg := string(bytes.TrimSpace(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s returned status %d: %s", domain.ErrLLMAuth, name, status, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s returned status %d: %s", domain.ErrLLMRateLimit, name, status, msg)
	default:
		return fmt.Errorf("%w: %s returned status %d: %s", domain.ErrLLMProvider, name, status, msg)
	}
}

// connectionError wraps a transport-level failure (socket, DNS,
// timeout) as domain.ErrLLMConnection.
func connectionError(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrLLMConnection, name, err)
}

// postJSON sends a JSON request and returns the raw response. The
// caller owns resp.Body.
func postJSON(ctx context.Context, client *http.Client, name, url string, payload any, headers map[string]string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, connectionError(name, err)
	}
	return resp, nil
}

// embedUnsupported is the shared Embed implementation of the
// completion-only variants.
func embedUnsupported(name string) ([]float32, error) {
	return nil, fmt.Errorf("%w: %s does not support embeddings", domain.ErrUnsupportedProvider, name)
}
