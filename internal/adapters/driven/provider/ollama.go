package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// Ollama defaults.
const (
	OllamaDefaultBaseURL        = "http://localhost:11434"
	OllamaDefaultModel          = "llama3.1"
	OllamaDefaultEmbeddingModel = "nomic-embed-text"
)

// OllamaConfig holds configuration for the local Ollama adapter.
type OllamaConfig struct {
	// BaseURL is the Ollama server URL (default: http://localhost:11434).
	BaseURL string

	// Model is the completion model (default: llama3.1).
	Model string

	// EmbeddingModel is the embedding model (default: nomic-embed-text).
	EmbeddingModel string

	// Timeout bounds non-streaming requests (default: 60s). Local
	// inference can be slow on first load.
	Timeout time.Duration
}

// Ollama is the local-HTTP provider. It supports both completions and
// embeddings and needs no API key.
type Ollama struct {
	unary          *http.Client
	streaming      *http.Client
	baseURL        string
	model          string
	embeddingModel string
}

var _ driven.Provider = (*Ollama)(nil)

// NewOllama creates an Ollama provider.
func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OllamaDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = OllamaDefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = OllamaDefaultEmbeddingModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	unary, streaming := newHTTPClients(cfg.Timeout)
	return &Ollama{
		unary:          unary,
		streaming:      streaming,
		baseURL:        cfg.BaseURL,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// ollamaChatRequest is the /api/chat request format.
type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// ollamaChatEvent is both the single non-streaming response and one
// NDJSON line of a streaming response.
type ollamaChatEvent struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates a vector embedding for the given text.
func (p *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := postJSON(ctx, p.unary, NameOllama, p.baseURL+"/api/embeddings",
		ollamaEmbedRequest{Model: p.embeddingModel, Prompt: text}, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectionError(NameOllama, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(NameOllama, resp.StatusCode, body)
	}

	var decoded ollamaEmbedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode ollama embeddings response: %w", err)
	}
	if len(decoded.Embedding) == 0 {
		return nil, fmt.Errorf("ollama: embeddings response is empty")
	}
	return decoded.Embedding, nil
}

// Complete produces a chat completion.
func (p *Ollama) Complete(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (string, error) {
	resp, err := postJSON(ctx, p.unary, NameOllama, p.baseURL+"/api/chat",
		p.chatRequest(messages, opts, false), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", connectionError(NameOllama, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(NameOllama, resp.StatusCode, body)
	}

	var decoded ollamaChatEvent
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return decoded.Message.Content, nil
}

// CompleteStream produces a streaming chat completion. Ollama streams
// newline-delimited JSON with a terminal done:true event.
func (p *Ollama) CompleteStream(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (driven.CompletionStream, error) {
	resp, err := postJSON(ctx, p.streaming, NameOllama, p.baseURL+"/api/chat",
		p.chatRequest(messages, opts, true), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, classifyStatus(NameOllama, resp.StatusCode, body)
	}

	return &ollamaStream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

func (p *Ollama) chatRequest(messages []driven.Message, opts driven.CompleteOptions, stream bool) ollamaChatRequest {
	model := opts.Model
	if model == "" {
		model = p.model
	}
	return ollamaChatRequest{
		Model:    model,
		Messages: toChatMessages(messages),
		Stream:   stream,
		Options: ollamaOptions{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
		},
	}
}

// Name returns the provider name.
func (p *Ollama) Name() string {
	return NameOllama
}

// Close releases resources.
func (p *Ollama) Close() error {
	return nil
}

// ollamaStream yields the text deltas of an NDJSON stream.
type ollamaStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	closeOnce sync.Once
	done      bool
}

var _ driven.CompletionStream = (*ollamaStream)(nil)

// Recv returns the next text delta, io.EOF after done:true, or the
// transport error on a broken stream.
func (s *ollamaStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event ollamaChatEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return "", fmt.Errorf("decode ollama stream event: %w", err)
		}
		if event.Done {
			s.done = true
			if event.Message.Content != "" {
				return event.Message.Content, nil
			}
			return "", io.EOF
		}
		if event.Message.Content != "" {
			return event.Message.Content, nil
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", connectionError(NameOllama, err)
	}
	return "", io.EOF
}

// Close releases the underlying connection. Safe to call repeatedly.
func (s *ollamaStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}
