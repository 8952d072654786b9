package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metadata keys every chunk carries. Extractors may add source-specific
// keys (e.g. web-crawl provenance) on top of these.
const (
	MetaChunkIndex = "chunk_index"
	MetaStartChar  = "start_char"
	MetaEndChar    = "end_char"
	MetaTokenCount = "token_count"
)

// Metadata keys added by web-crawl ingestion.
const (
	MetaSourceURL    = "source_url"
	MetaCanonicalURL = "canonical_url"
	MetaPageTitle    = "page_title"
	MetaDescription  = "meta_description"
	MetaKeywords     = "keywords"
)

// Chunk is a segment of a document together with its vector embedding.
// Chunks are the unit of retrieval, stored as knowledge items.
type Chunk struct {
	// ID is the unique identifier.
	ID uuid.UUID

	// DocumentID links to the parent Document. Deletes cascade.
	DocumentID uuid.UUID

	// Text is the chunk text. Never empty.
	Text string

	// Index is the 0-based position within the document, dense per document.
	Index int

	// Embedding is the fixed-dimension vector. The dimension is constant
	// per deployment and equals the embedding provider's dimension.
	Embedding []float32

	// Metadata carries at minimum chunk_index, start_char, end_char and
	// token_count, plus any source-specific fields.
	Metadata map[string]any

	// CreatedAt is when the chunk was persisted.
	CreatedAt time.Time
}

// Validate checks the chunk invariants. sourceLen is the length of the
// source text the offsets refer to; pass a negative value to skip the
// offset bounds check.
func (c *Chunk) Validate(sourceLen int) error {
	if c.Text == "" {
		return fmt.Errorf("%w: chunk text must not be empty", ErrValidation)
	}
	if c.Index < 0 {
		return fmt.Errorf("%w: chunk index must not be negative", ErrValidation)
	}
	if sourceLen >= 0 {
		start, startOK := metaInt(c.Metadata, MetaStartChar)
		end, endOK := metaInt(c.Metadata, MetaEndChar)
		if !startOK || !endOK {
			return fmt.Errorf("%w: chunk metadata missing offsets", ErrValidation)
		}
		if start < 0 || start >= end || end > sourceLen {
			return fmt.Errorf("%w: chunk offsets [%d,%d) out of range for source length %d",
				ErrValidation, start, end, sourceLen)
		}
	}
	return nil
}

// metaInt reads an integer metadata value, tolerating the numeric types
// JSON round-tripping produces.
func metaInt(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// NewChunkID generates a fresh chunk identifier.
func NewChunkID() uuid.UUID {
	return uuid.New()
}
