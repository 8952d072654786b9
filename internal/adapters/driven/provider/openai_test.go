package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

func newTestOpenAI(t *testing.T, handler http.Handler) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestNewOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	require.Error(t, err)
}

func TestOpenAIEmbed(t *testing.T) {
	p := newTestOpenAI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Input)

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))

	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOpenAIComplete(t *testing.T) {
	p := newTestOpenAI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, driven.RoleSystem, req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "completed text"}},
			},
		})
	}))

	out, err := p.Complete(context.Background(), []driven.Message{
		{Role: driven.RoleSystem, Content: "be brief"},
		{Role: driven.RoleUser, Content: "hi"},
	}, driven.CompleteOptions{MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "completed text", out)
}

func TestOpenAICompleteStream(t *testing.T) {
	p := newTestOpenAI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"Hel"}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"lo"}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{}}]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))

	stream, err := p.CompleteStream(context.Background(), []driven.Message{
		{Role: driven.RoleUser, Content: "hi"},
	}, driven.CompleteOptions{})
	require.NoError(t, err)
	defer stream.Close()

	var got string
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got += delta
	}
	assert.Equal(t, "Hello", got)

	// EOF is sticky.
	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, stream.Close())
}

func TestOpenAIErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"401 maps to auth", http.StatusUnauthorized, domain.ErrLLMAuth},
		{"403 maps to auth", http.StatusForbidden, domain.ErrLLMAuth},
		{"429 maps to rate limit", http.StatusTooManyRequests, domain.ErrLLMRateLimit},
		{"500 maps to provider", http.StatusInternalServerError, domain.ErrLLMProvider},
		{"400 maps to provider", http.StatusBadRequest, domain.ErrLLMProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"error":{"message":"nope"}}`)
			}))

			_, err := p.Complete(context.Background(), []driven.Message{
				{Role: driven.RoleUser, Content: "hi"},
			}, driven.CompleteOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			_, err = p.Embed(context.Background(), "hi")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenAIConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens here anymore

	p, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: url})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMConnection)
}
