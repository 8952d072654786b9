// Package chunker splits document text into fixed-size overlapping
// segments with stable offsets. Chunking is a pure function: the same
// text and parameters always produce the same segments.
package chunker

import "strings"

// Default parameters.
const (
	DefaultChunkSize = 2048
	DefaultOverlap   = 200
)

// TextChunk is one segment of the source text. Offsets index into the
// source: 0 <= StartChar < EndChar <= len(source).
type TextChunk struct {
	// Text is the trimmed segment text. Never empty.
	Text string

	// Index is the 0-based position in the emitted sequence.
	Index int

	// StartChar and EndChar are the segment's source offsets before
	// trimming.
	StartChar int
	EndChar   int

	// TokenCount is the estimated token count (len/4).
	TokenCount int
}

// Chunker cuts text into overlapping segments.
type Chunker struct {
	chunkSize         int
	overlap           int
	preserveSentences bool
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the segment size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive segments.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithPreserveSentences toggles snapping segment ends to sentence
// boundaries.
func WithPreserveSentences(preserve bool) Option {
	return func(c *Chunker) {
		c.preserveSentences = preserve
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:         DefaultChunkSize,
		overlap:           DefaultOverlap,
		preserveSentences: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for forward progress.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Chunk splits text into segments. Empty or whitespace-only input
// yields nothing. Chunk indexes increase densely from 0; consecutive
// segments overlap by at most the configured overlap, and the emitted
// intervals cover the whole input.
func (c *Chunker) Chunk(text string) []TextChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	textLen := len(text)
	estimated := textLen/(c.chunkSize-c.overlap) + 1
	chunks := make([]TextChunk, 0, estimated)

	cursor := 0
	index := 0

	for cursor < textLen {
		end := cursor + c.chunkSize
		if end > textLen {
			end = textLen
		}

		if c.preserveSentences && end < textLen {
			if boundary := lastSentenceEnd(text[cursor:end]); boundary > 0 {
				end = cursor + boundary
			}
		}

		segment := strings.TrimSpace(text[cursor:end])
		if segment != "" {
			chunks = append(chunks, TextChunk{
				Text:       segment,
				Index:      index,
				StartChar:  cursor,
				EndChar:    end,
				TokenCount: len(segment) / 4,
			})
			index++
		}

		next := end - c.overlap
		if next <= cursor {
			// Guarantee progress when the overlap would rewind past the
			// segment we just emitted.
			next = end
		}
		cursor = next
	}

	return chunks
}

// lastSentenceEnd returns the offset just past the last sentence
// terminator that is followed by whitespace, or 0 when the segment has
// no sentence boundary.
func lastSentenceEnd(segment string) int {
	for i := len(segment) - 2; i >= 0; i-- {
		switch segment[i] {
		case '.', '!', '?':
			if isSpace(segment[i+1]) {
				return i + 1
			}
		}
	}
	return 0
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
