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

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// chatRequest is the OpenAI-compatible /chat/completions request.
// OpenRouter speaks the same wire format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// chatStreamEvent is one decoded SSE data payload of a streamed
// completion.
type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func toChatMessages(messages []driven.Message) []chatMessage {
	out := make([]chatMessage, len(messages))
	for i, m := range messages {
		out[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// completeChat performs a non-streaming OpenAI-wire completion.
func completeChat(ctx context.Context, client *http.Client, name, url string, headers map[string]string, req chatRequest) (string, error) {
	resp, err := postJSON(ctx, client, name, url, req, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", connectionError(name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(name, resp.StatusCode, body)
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode %s response: %w", name, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%s: response has no choices", name)
	}
	return decoded.Choices[0].Message.Content, nil
}

// streamChat opens an OpenAI-wire streaming completion. The response
// is SSE: "data: <json>" lines with a literal "data: [DONE]" terminal.
func streamChat(ctx context.Context, client *http.Client, name, url string, headers map[string]string, req chatRequest) (driven.CompletionStream, error) {
	req.Stream = true

	resp, err := postJSON(ctx, client, name, url, req, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, classifyStatus(name, resp.StatusCode, body)
	}

	return &sseStream{name: name, body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

// sseStream yields the text deltas of an SSE completion stream.
type sseStream struct {
	name    string
	body    io.ReadCloser
	scanner *bufio.Scanner

	closeOnce sync.Once
	done      bool
}

var _ driven.CompletionStream = (*sseStream)(nil)

// Recv returns the next non-empty text delta, io.EOF after the
// terminal marker, or the transport error on a broken stream.
func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var event chatStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return "", fmt.Errorf("decode %s stream event: %w", s.name, err)
		}
		if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
			continue
		}
		return event.Choices[0].Delta.Content, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", connectionError(s.name, err)
	}
	return "", io.EOF
}

// Close releases the underlying connection. Safe to call repeatedly.
func (s *sseStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}
