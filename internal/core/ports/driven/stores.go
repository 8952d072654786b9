package driven

import (
	"context"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

// ProjectStore persists projects.
type ProjectStore interface {
	// Save inserts or updates a project.
	Save(ctx context.Context, project *domain.Project) error

	// Get retrieves a project by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// ListByOwner returns all projects owned by a user.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error)

	// Delete removes a project. Documents and chunks cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentStore persists documents.
type DocumentStore interface {
	// Get retrieves a document by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)

	// ListByProject returns all documents in a project.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Document, error)

	// FindVersions returns existing versions of a named document within a
	// project, newest first.
	FindVersions(ctx context.Context, projectID uuid.UUID, name string) ([]domain.Document, error)

	// Delete removes a document. Chunks cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

// VectorHit is a chunk matched by similarity search.
type VectorHit struct {
	Chunk domain.Chunk

	// Similarity is the cosine similarity in [0,1].
	Similarity float64
}

// KeywordHit is a chunk matched by full-text search.
type KeywordHit struct {
	Chunk domain.Chunk

	// Score is the BM25-like relevance score from the text index.
	Score float64
}

// ChunkStore persists chunks and runs the two searches the retrieval
// pipeline composes. InsertDocumentWithChunks is the single transaction
// of the ingestion pipeline: either the document row and every chunk
// land together, or nothing does.
type ChunkStore interface {
	// InsertDocumentWithChunks atomically inserts a document and its
	// chunk batch. Chunks are stored ordered by their Index.
	InsertDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetByDocument returns a document's chunks ordered by chunk index.
	GetByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Chunk, error)

	// VectorSearch returns the top-limit chunks of a project by cosine
	// similarity to the query embedding, descending.
	VectorSearch(ctx context.Context, projectID uuid.UUID, embedding []float32, limit int) ([]VectorHit, error)

	// KeywordSearch returns the top-limit chunks of a project by
	// full-text relevance to the query, descending.
	KeywordSearch(ctx context.Context, projectID uuid.UUID, query string, limit int) ([]KeywordHit, error)
}

// UserStore persists user accounts.
type UserStore interface {
	// Get retrieves a user by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Save inserts or updates a user.
	Save(ctx context.Context, user *domain.User) error
}
