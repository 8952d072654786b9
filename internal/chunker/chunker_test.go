package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Empty(t *testing.T) {
	c := New()

	assert.Nil(t, c.Chunk(""))
	assert.Nil(t, c.Chunk("   \n\t  "))
}

func TestChunk_SingleSegment(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(10))

	chunks := c.Chunk("A short paragraph.")
	require.Len(t, chunks, 1)

	assert.Equal(t, "A short paragraph.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, 18, chunks[0].EndChar)
	assert.Equal(t, 18/4, chunks[0].TokenCount)
}

func TestChunk_SentenceBoundary(t *testing.T) {
	c := New(WithChunkSize(40), WithOverlap(5), WithPreserveSentences(true))

	text := "First sentence here. Second sentence is longer and continues on."
	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	// The first segment snaps to the end of "First sentence here."
	assert.Equal(t, "First sentence here.", chunks[0].Text)
	assert.Equal(t, 20, chunks[0].EndChar)
}

func TestChunk_NoBoundaryFallsBackToFixedSize(t *testing.T) {
	c := New(WithChunkSize(32), WithOverlap(4), WithPreserveSentences(true))

	text := strings.Repeat("abcdefgh", 16) // no terminators at all
	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 32, chunks[0].EndChar-chunks[0].StartChar)
}

func TestChunk_TotalCoverage(t *testing.T) {
	// Union of [start,end) intervals covers [0,len); consecutive
	// intervals overlap by at most the configured overlap; indexes are
	// dense from 0.
	texts := []string{
		"One sentence. Another sentence follows! A question arises? Then more prose without end",
		strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 40),
		strings.Repeat("x", 5000),
		"Tiny.",
	}

	const overlap = 50
	c := New(WithChunkSize(300), WithOverlap(overlap))

	for _, text := range texts {
		chunks := c.Chunk(text)
		require.NotEmpty(t, chunks)

		assert.Equal(t, 0, chunks[0].StartChar)
		assert.Equal(t, len(text), chunks[len(chunks)-1].EndChar)

		for i, ch := range chunks {
			assert.Equal(t, i, ch.Index)
			assert.Less(t, ch.StartChar, ch.EndChar)

			if i > 0 {
				prev := chunks[i-1]
				// No gaps.
				assert.LessOrEqual(t, ch.StartChar, prev.EndChar)
				// Overlap bounded.
				assert.LessOrEqual(t, prev.EndChar-ch.StartChar, overlap)
				// Progress.
				assert.Greater(t, ch.StartChar, prev.StartChar)
			}
		}
	}
}

func TestChunk_OverlapCarriesText(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20), WithPreserveSentences(false))

	text := strings.Repeat("0123456789", 30)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, 100, chunks[0].EndChar)
	assert.Equal(t, 80, chunks[1].StartChar)
}

func TestNew_OverlapClamped(t *testing.T) {
	// Overlap >= chunk size would never progress; New clamps it.
	c := New(WithChunkSize(100), WithOverlap(100))

	chunks := c.Chunk(strings.Repeat("a", 500))
	require.NotEmpty(t, chunks)
	assert.Equal(t, len(chunks)-1, chunks[len(chunks)-1].Index)
}

func TestChunk_Deterministic(t *testing.T) {
	c := New(WithChunkSize(128), WithOverlap(16))
	text := strings.Repeat("Some sentence. ", 100)

	first := c.Chunk(text)
	second := c.Chunk(text)

	assert.Equal(t, first, second)
}
