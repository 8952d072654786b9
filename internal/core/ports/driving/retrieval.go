package driving

import (
	"context"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

// RetrievalService answers natural-language queries over a project's
// chunks. The owner check runs before any backend is touched.
type RetrievalService interface {
	Query(ctx context.Context, projectID, userID uuid.UUID, queryText string, opts domain.QueryOptions) (*domain.QueryResult, error)
}
