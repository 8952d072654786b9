package driving

import (
	"context"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

// CreateProjectRequest carries the fields of a new project.
type CreateProjectRequest struct {
	Name        string
	Description string
	Tags        []string
	OwnerID     uuid.UUID
}

// UpdateProjectRequest carries a partial project update. Nil fields are
// left unchanged. Updates are last-write-wins.
type UpdateProjectRequest struct {
	Name        *string
	Description *string
	Tags        []string
}

// ProjectService manages the project lifecycle.
type ProjectService interface {
	Create(ctx context.Context, req CreateProjectRequest) (*domain.Project, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error)
	Update(ctx context.Context, id, userID uuid.UUID, req UpdateProjectRequest) (*domain.Project, error)
	Archive(ctx context.Context, id, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// DocumentService manages documents within a project.
type DocumentService interface {
	List(ctx context.Context, projectID, userID uuid.UUID) ([]domain.Document, error)
	Get(ctx context.Context, documentID, userID uuid.UUID) (*domain.Document, error)
	Delete(ctx context.Context, documentID, userID uuid.UUID) error
}
