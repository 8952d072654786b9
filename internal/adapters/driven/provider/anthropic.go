package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// Anthropic defaults.
const (
	AnthropicDefaultBaseURL = "https://api.anthropic.com"
	AnthropicDefaultModel   = "claude-3-5-sonnet-latest"

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// anthropicDefaultMaxTokens applies when the caller does not set a
	// cap; the API rejects requests without max_tokens.
	anthropicDefaultMaxTokens = 1024
)

// AnthropicConfig holds configuration for the Anthropic adapter.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the completion model (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout bounds non-streaming requests (default: 60s).
	Timeout time.Duration
}

// Anthropic is the Anthropic-backed provider. It is completion-only.
type Anthropic struct {
	unary     *http.Client
	streaming *http.Client
	baseURL   string
	apiKey    string
	model     string
}

var _ driven.Provider = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = AnthropicDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = AnthropicDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	unary, streaming := newHTTPClients(cfg.Timeout)
	return &Anthropic{
		unary:     unary,
		streaming: streaming,
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
	}, nil
}

// messagesRequest is the /v1/messages request format. The system
// prompt travels in its own field, not in the message list.
type messagesRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Embed always fails: Anthropic does not serve embeddings.
func (p *Anthropic) Embed(_ context.Context, _ string) ([]float32, error) {
	return embedUnsupported(NameAnthropic)
}

// Complete produces a chat completion.
func (p *Anthropic) Complete(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (string, error) {
	resp, err := postJSON(ctx, p.unary, NameAnthropic, p.baseURL+"/v1/messages",
		p.messagesRequest(messages, opts, false), p.headers())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", connectionError(NameAnthropic, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(NameAnthropic, resp.StatusCode, body)
	}

	var decoded messagesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	var out strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("anthropic: response has no text content")
	}
	return out.String(), nil
}

// CompleteStream produces a streaming chat completion. Anthropic emits
// typed SSE events; text arrives in content_block_delta events carrying
// a text_delta payload.
func (p *Anthropic) CompleteStream(ctx context.Context, messages []driven.Message, opts driven.CompleteOptions) (driven.CompletionStream, error) {
	resp, err := postJSON(ctx, p.streaming, NameAnthropic, p.baseURL+"/v1/messages",
		p.messagesRequest(messages, opts, true), p.headers())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, classifyStatus(NameAnthropic, resp.StatusCode, body)
	}

	return &anthropicStream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

// messagesRequest splits the system message out of the list per the
// Anthropic message contract.
func (p *Anthropic) messagesRequest(messages []driven.Message, opts driven.CompleteOptions, stream bool) messagesRequest {
	var system string
	chat := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = m.Content
			continue
		}
		chat = append(chat, chatMessage{Role: m.Role, Content: m.Content})
	}

	model := opts.Model
	if model == "" {
		model = p.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	return messagesRequest{
		Model:       model,
		Messages:    chat,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: opts.Temperature,
		Stream:      stream,
	}
}

func (p *Anthropic) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

// Name returns the provider name.
func (p *Anthropic) Name() string {
	return NameAnthropic
}

// Close releases resources.
func (p *Anthropic) Close() error {
	return nil
}

// anthropicEvent is one decoded SSE data payload.
type anthropicEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// anthropicStream yields the text deltas of a typed-event stream.
type anthropicStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	closeOnce sync.Once
	done      bool
}

var _ driven.CompletionStream = (*anthropicStream)(nil)

// Recv returns the next text delta, io.EOF after message_stop, or the
// transport error on a broken stream.
func (s *anthropicStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event anthropicEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return "", fmt.Errorf("decode anthropic stream event: %w", err)
		}

		switch event.Type {
		case "message_stop":
			s.done = true
			return "", io.EOF
		case "content_block_delta":
			if event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				return event.Delta.Text, nil
			}
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", connectionError(NameAnthropic, err)
	}
	return "", io.EOF
}

// Close releases the underlying connection. Safe to call repeatedly.
func (s *anthropicStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}
