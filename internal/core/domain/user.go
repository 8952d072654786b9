package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns projects. Password hashing and token
// issuance live outside the core; the retrieval pipeline only compares
// owner identifiers.
type User struct {
	// ID is the unique identifier.
	ID uuid.UUID

	// Username is unique across the deployment.
	Username string

	// Email is unique across the deployment.
	Email string

	// HashedPassword is the stored credential. Opaque to the core.
	HashedPassword string

	// IsActive gates login; inactive users keep their data.
	IsActive bool

	// Roles are coarse authorisation labels.
	Roles []string

	// CreatedAt is when the account was created.
	CreatedAt time.Time

	// UpdatedAt is when the account was last modified.
	UpdatedAt time.Time
}
