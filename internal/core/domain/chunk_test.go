package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChunk() Chunk {
	return Chunk{
		ID:         NewChunkID(),
		DocumentID: uuid.New(),
		Text:       "some content",
		Index:      0,
		Embedding:  []float32{0.1, 0.2, 0.3},
		Metadata: map[string]any{
			MetaChunkIndex: 0,
			MetaStartChar:  0,
			MetaEndChar:    12,
			MetaTokenCount: 3,
		},
	}
}

func TestChunk_Validate(t *testing.T) {
	c := validChunk()
	assert.NoError(t, c.Validate(12))
}

func TestChunk_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Chunk)
		sourceLen int
	}{
		{
			name:      "empty text",
			mutate:    func(c *Chunk) { c.Text = "" },
			sourceLen: 12,
		},
		{
			name:      "negative index",
			mutate:    func(c *Chunk) { c.Index = -1 },
			sourceLen: 12,
		},
		{
			name:      "missing offsets",
			mutate:    func(c *Chunk) { delete(c.Metadata, MetaStartChar) },
			sourceLen: 12,
		},
		{
			name:      "start equals end",
			mutate:    func(c *Chunk) { c.Metadata[MetaEndChar] = 0 },
			sourceLen: 12,
		},
		{
			name:      "end past source",
			mutate:    func(c *Chunk) { c.Metadata[MetaEndChar] = 13 },
			sourceLen: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validChunk()
			tt.mutate(&c)
			err := c.Validate(tt.sourceLen)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestChunk_Validate_SkipOffsetCheck(t *testing.T) {
	c := validChunk()
	c.Metadata = map[string]any{}

	// Negative source length skips the offset bounds check.
	assert.NoError(t, c.Validate(-1))
}

func TestChunk_Validate_JSONNumericTypes(t *testing.T) {
	// Offsets round-tripped through JSON arrive as float64.
	c := validChunk()
	c.Metadata[MetaStartChar] = float64(0)
	c.Metadata[MetaEndChar] = float64(12)

	assert.NoError(t, c.Validate(12))
}
