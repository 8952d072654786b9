package driving

import (
	"context"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

// IngestFileRequest describes one file upload.
type IngestFileRequest struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID

	// Filename selects the extractor by extension and names the document.
	Filename string

	// Data is the raw source bytes.
	Data []byte

	// Bump, when set, ingests a new version of an existing document
	// instead of version 1.0.0.
	Bump *domain.BumpKind
}

// IngestURLRequest describes one web-crawl ingestion.
type IngestURLRequest struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	URL       string
	Bump      *domain.BumpKind
}

// IngestionService runs the extract, chunk, embed, persist pipeline.
type IngestionService interface {
	// IngestFile ingests uploaded bytes and returns the new document ID.
	IngestFile(ctx context.Context, req IngestFileRequest) (uuid.UUID, error)

	// IngestURL crawls a URL and ingests the page text.
	IngestURL(ctx context.Context, req IngestURLRequest) (uuid.UUID, error)
}
