package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// OpenRouter defaults.
const (
	OpenRouterDefaultBaseURL = "https://openrouter.ai/api"
	OpenRouterDefaultModel   = "openai/gpt-4o-mini"
)

// OpenRouterConfig holds configuration for the OpenRouter adapter.
type OpenRouterConfig struct {
	// APIKey is the OpenRouter API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://openrouter.ai/api).
	BaseURL string

	// Model is the completion model (default: openai/gpt-4o-mini).
	Model string

	// Timeout bounds non-streaming requests (default: 60s).
	Timeout time.Duration
}

// OpenRouter is the aggregator-backed provider. It speaks the OpenAI
// wire format and is completion-only.
type OpenRouter struct {
	unary     *http.Client
	streaming *http.Client
	baseURL   string
	apiKey    string
	model     string
}

var _ driven.Provider = (*OpenRouter)(nil)

// NewOpenRouter creates an OpenRouter provider.
func NewOpenRouter(cfg OpenRouterConfig) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = OpenRouterDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	unary, streaming := newHTTPClients(cfg.Timeout)
	return &OpenRouter{
		unary:     unary,
		streaming: streaming,
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
	}, nil
}

// Embed always fails: OpenRouter does not serve embeddings.
func (p *OpenRouter) Embed(_ context.Context, _ string) ([]float32, error) {
	return embedUnsupported(NameOpenRouter)
}

// Complete produces a chat completion.
func (p *OpenRouter) Complete(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (string, error) {
	return completeChat(ctx, p.unary, NameOpenRouter, p.baseURL+"/v1/chat/completions",
		p.headers(), p.chatRequest(messages, opts))
}

// CompleteStream produces a streaming chat completion.
func (p *OpenRouter) CompleteStream(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (driven.CompletionStream, error) {
	return streamChat(ctx, p.streaming, NameOpenRouter, p.baseURL+"/v1/chat/completions",
		p.headers(), p.chatRequest(messages, opts))
}

func (p *OpenRouter) chatRequest(messages []driven.Message, opts driven.CompleteOptions) chatRequest {
	model := opts.Model
	if model == "" {
		model = p.model
	}
	return chatRequest{
		Model:       model,
		Messages:    toChatMessages(messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
}

func (p *OpenRouter) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

// Name returns the provider name.
func (p *OpenRouter) Name() string {
	return NameOpenRouter
}

// Close releases resources.
func (p *OpenRouter) Close() error {
	return nil
}
