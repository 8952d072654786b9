package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectActive is the default state; documents can be ingested and queried.
	ProjectActive ProjectStatus = "Active"

	// ProjectArchived is a soft-deleted state. Data is retained.
	ProjectArchived ProjectStatus = "Archived"
)

// Limits on project fields.
const (
	MaxProjectNameLen        = 200
	MaxProjectDescriptionLen = 2000
)

// tagPattern restricts tags to url-safe identifiers.
var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Project is the tenant boundary for knowledge. A project owns its
// documents, and deleting it cascades to documents and chunks.
type Project struct {
	// ID is the unique identifier.
	ID uuid.UUID

	// Name is the display name (non-empty, at most 200 chars).
	Name string

	// Description is optional free text (at most 2000 chars).
	Description string

	// Status is either Active or Archived.
	Status ProjectStatus

	// Tags are optional labels, each matching [A-Za-z0-9_-]+.
	Tags []string

	// OwnerID identifies the user who owns this project.
	OwnerID uuid.UUID

	// CreatedAt is when the project was created.
	CreatedAt time.Time

	// UpdatedAt is when the project was last modified.
	UpdatedAt time.Time
}

// NewProject creates a validated Active project owned by ownerID.
func NewProject(name, description string, tags []string, ownerID uuid.UUID) (*Project, error) {
	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      ProjectActive,
		Tags:        tags,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the project invariants.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name must not be empty", ErrValidation)
	}
	if len(p.Name) > MaxProjectNameLen {
		return fmt.Errorf("%w: project name exceeds %d characters", ErrValidation, MaxProjectNameLen)
	}
	if len(p.Description) > MaxProjectDescriptionLen {
		return fmt.Errorf("%w: project description exceeds %d characters", ErrValidation, MaxProjectDescriptionLen)
	}
	if p.Status != ProjectActive && p.Status != ProjectArchived {
		return fmt.Errorf("%w: invalid project status %q", ErrValidation, p.Status)
	}
	for _, tag := range p.Tags {
		if !tagPattern.MatchString(tag) {
			return fmt.Errorf("%w: invalid tag %q", ErrValidation, tag)
		}
	}
	return nil
}

// Archive transitions the project to the Archived state.
func (p *Project) Archive() {
	p.Status = ProjectArchived
	p.UpdatedAt = time.Now().UTC()
}

// OwnedBy reports whether userID owns the project.
func (p *Project) OwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
