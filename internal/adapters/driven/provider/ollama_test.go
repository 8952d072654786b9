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

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

func newTestOllama(t *testing.T, handler http.Handler) *Ollama {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOllama(OllamaConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestOllamaEmbed(t *testing.T) {
	p := newTestOllama(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some text", req.Prompt)

		json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float32{0.5, 0.25},
		})
	}))

	vec, err := p.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestOllamaComplete(t *testing.T) {
	p := newTestOllama(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, 32, req.Options.NumPredict)

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "local answer"},
			"done":    true,
		})
	}))

	out, err := p.Complete(context.Background(), []driven.Message{
		{Role: driven.RoleUser, Content: "hi"},
	}, driven.CompleteOptions{MaxTokens: 32})
	require.NoError(t, err)
	assert.Equal(t, "local answer", out)
}

func TestOllamaCompleteStream(t *testing.T) {
	p := newTestOllama(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "application/x-ndjson")
		io.WriteString(w, `{"message":{"content":"Hel"},"done":false}`+"\n")
		io.WriteString(w, `{"message":{"content":"lo"},"done":false}`+"\n")
		io.WriteString(w, `{"message":{"content":""},"done":true}`+"\n")
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

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestOllamaNeedsNoAPIKey(t *testing.T) {
	p, err := NewOllama(OllamaConfig{})
	require.NoError(t, err)
	assert.Equal(t, NameOllama, p.Name())
}
