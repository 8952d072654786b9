package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
	"github.com/corpuslabs/corpusd/internal/logger"
)

// Ensure the services implement their interfaces.
var (
	_ driving.ProjectService  = (*ProjectService)(nil)
	_ driving.DocumentService = (*DocumentService)(nil)
)

// ProjectService manages the project lifecycle. Every read or mutation
// of an existing project enforces ownership first.
type ProjectService struct {
	store driven.ProjectStore
}

// NewProjectService creates a project service.
func NewProjectService(store driven.ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

// Create validates and persists a new active project.
func (s *ProjectService) Create(ctx context.Context, req driving.CreateProjectRequest) (*domain.Project, error) {
	project, err := domain.NewProject(req.Name, req.Description, req.Tags, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, project); err != nil {
		return nil, err
	}

	logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", project.OwnerID.String()))
	return project, nil
}

// Get returns the project if userID owns it.
func (s *ProjectService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.Project, error) {
	return s.owned(ctx, id, userID)
}

// List returns the owner's projects.
func (s *ProjectService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Update applies a partial update. Nil fields stay unchanged; updates
// are last-write-wins.
func (s *ProjectService) Update(ctx context.Context, id, userID uuid.UUID, req driving.UpdateProjectRequest) (*domain.Project, error) {
	project, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Tags != nil {
		project.Tags = req.Tags
	}
	project.UpdatedAt = time.Now().UTC()

	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Archive marks the project archived. Archived projects keep their
// documents and stay queryable.
func (s *ProjectService) Archive(ctx context.Context, id, userID uuid.UUID) error {
	project, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	project.Archive()
	return s.store.Save(ctx, project)
}

// Delete removes the project. Documents and chunks cascade.
func (s *ProjectService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("project deleted", zap.String("project_id", id.String()))
	return nil
}

func (s *ProjectService) owned(ctx context.Context, id, userID uuid.UUID) (*domain.Project, error) {
	project, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, fmt.Errorf("%w: project %s is not owned by user %s", domain.ErrUnauthorized, id, userID)
	}
	return project, nil
}

// DocumentService manages documents within a project. Ownership is
// checked through the parent project.
type DocumentService struct {
	projectStore driven.ProjectStore
	docStore     driven.DocumentStore
}

// NewDocumentService creates a document service.
func NewDocumentService(projectStore driven.ProjectStore, docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{projectStore: projectStore, docStore: docStore}
}

// List returns a project's documents if userID owns the project.
func (s *DocumentService) List(ctx context.Context, projectID, userID uuid.UUID) ([]domain.Document, error) {
	if err := s.authorizeProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.docStore.ListByProject(ctx, projectID)
}

// Get returns the document if userID owns its project.
func (s *DocumentService) Get(ctx context.Context, documentID, userID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProject(ctx, doc.ProjectID, userID); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the document. Chunks cascade.
func (s *DocumentService) Delete(ctx context.Context, documentID, userID uuid.UUID) error {
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.authorizeProject(ctx, doc.ProjectID, userID); err != nil {
		return err
	}
	return s.docStore.Delete(ctx, documentID)
}

func (s *DocumentService) authorizeProject(ctx context.Context, projectID, userID uuid.UUID) error {
	project, err := s.projectStore.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return fmt.Errorf("%w: project %s is not owned by user %s", domain.ErrUnauthorized, projectID, userID)
	}
	return nil
}
