package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

func TestSynthesizeBuildsLabeledContext(t *testing.T) {
	var captured []driven.Message
	provider := &mockProvider{
		completeFunc: func(messages []driven.Message) (string, error) {
			captured = messages
			return "  Python is a language.  ", nil
		},
	}

	answer := NewSynthesizer(provider, "system prompt", 512).
		Synthesize(context.Background(), "what is python?", scoredChunks("first chunk", "second chunk"))

	require.NotNil(t, answer)
	assert.Equal(t, "Python is a language.", *answer)

	require.Len(t, captured, 2)
	assert.Equal(t, driven.RoleSystem, captured[0].Role)
	assert.Equal(t, "system prompt", captured[0].Content)
	assert.True(t, strings.Contains(captured[1].Content, "[Chunk 0] first chunk"))
	assert.True(t, strings.Contains(captured[1].Content, "[Chunk 1] second chunk"))
	assert.True(t, strings.Contains(captured[1].Content, "what is python?"))
}

func TestSynthesizeEmptyChunksMakesNoCall(t *testing.T) {
	provider := &mockProvider{}

	answer := NewSynthesizer(provider, "p", 512).Synthesize(context.Background(), "q", nil)
	assert.Nil(t, answer)
	assert.Zero(t, provider.completeCount())
}

func TestSynthesizeDegradesToNilOnFailure(t *testing.T) {
	provider := &mockProvider{
		completeFunc: func([]driven.Message) (string, error) {
			return "", errors.New("provider down")
		},
	}

	answer := NewSynthesizer(provider, "p", 512).Synthesize(context.Background(), "q", scoredChunks("chunk"))
	assert.Nil(t, answer)
}
