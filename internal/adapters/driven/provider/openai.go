package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// OpenAI defaults.
const (
	OpenAIDefaultBaseURL        = "https://api.openai.com"
	OpenAIDefaultModel          = "gpt-4o-mini"
	OpenAIDefaultEmbeddingModel = "text-embedding-3-small"
)

// OpenAIConfig holds configuration for the OpenAI adapter.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com).
	BaseURL string

	// Model is the completion model (default: gpt-4o-mini).
	Model string

	// EmbeddingModel is the embedding model (default: text-embedding-3-small).
	EmbeddingModel string

	// Timeout bounds non-streaming requests (default: 60s).
	Timeout time.Duration
}

// OpenAI is the OpenAI-backed provider. It supports both completions
// and embeddings.
type OpenAI struct {
	unary          *http.Client
	streaming      *http.Client
	baseURL        string
	apiKey         string
	model          string
	embeddingModel string
}

var _ driven.Provider = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenAIDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = OpenAIDefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = OpenAIDefaultEmbeddingModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	unary, streaming := newHTTPClients(cfg.Timeout)
	return &OpenAI{
		unary:          unary,
		streaming:      streaming,
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// embeddingsRequest is the /v1/embeddings request format.
type embeddingsRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed generates a vector embedding for the given text.
func (p *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := postJSON(ctx, p.unary, NameOpenAI, p.baseURL+"/v1/embeddings",
		embeddingsRequest{Model: p.embeddingModel, Input: text}, p.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectionError(NameOpenAI, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(NameOpenAI, resp.StatusCode, body)
	}

	var decoded embeddingsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode openai embeddings response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, fmt.Errorf("openai: embeddings response has no data")
	}
	return decoded.Data[0].Embedding, nil
}

// Complete produces a chat completion.
func (p *OpenAI) Complete(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (string, error) {
	return completeChat(ctx, p.unary, NameOpenAI, p.baseURL+"/v1/chat/completions",
		p.headers(), p.chatRequest(messages, opts))
}

// CompleteStream produces a streaming chat completion.
func (p *OpenAI) CompleteStream(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (driven.CompletionStream, error) {
	return streamChat(ctx, p.streaming, NameOpenAI, p.baseURL+"/v1/chat/completions",
		p.headers(), p.chatRequest(messages, opts))
}

func (p *OpenAI) chatRequest(messages []driven.Message, opts driven.CompleteOptions) chatRequest {
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

func (p *OpenAI) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

// Name returns the provider name.
func (p *OpenAI) Name() string {
	return NameOpenAI
}

// Close releases resources.
func (p *OpenAI) Close() error {
	return nil
}
