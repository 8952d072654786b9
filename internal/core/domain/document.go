package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies the source format of an ingested document.
type DocumentType string

// Supported document types.
const (
	DocTypeMarkdown DocumentType = "markdown"
	DocTypePDF      DocumentType = "pdf"
	DocTypeDOCX     DocumentType = "docx"
	DocTypeHTML     DocumentType = "html"
	DocTypeText     DocumentType = "text"
	DocTypeWebCrawl DocumentType = "web-crawl"
)

// InitialVersion is assigned to the first ingestion of a document.
const InitialVersion = "1.0.0"

var (
	versionPattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+$`)
	hashPattern    = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// Document is an ingested source of text within a project.
// Re-ingesting a source under a bumped version creates a new row;
// documents are never mutated in place.
type Document struct {
	// ID is the unique identifier.
	ID uuid.UUID

	// ProjectID links to the owning Project. Deletes cascade.
	ProjectID uuid.UUID

	// Name is the display name, unique per (project, name, version).
	Name string

	// Type is the source format.
	Type DocumentType

	// Version is a semver string, optionally prefixed with "v".
	Version string

	// ContentHash is the lowercase hex SHA-256 of the canonical source bytes.
	// Stable under re-ingestion of identical bytes.
	ContentHash string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document row was last touched.
	UpdatedAt time.Time
}

// NewDocument creates a validated document at the initial version.
func NewDocument(projectID uuid.UUID, name string, docType DocumentType, contentHash string) (*Document, error) {
	now := time.Now().UTC()
	d := &Document{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        name,
		Type:        docType,
		Version:     InitialVersion,
		ContentHash: contentHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the document invariants.
func (d *Document) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: document name must not be empty", ErrValidation)
	}
	switch d.Type {
	case DocTypeMarkdown, DocTypePDF, DocTypeDOCX, DocTypeHTML, DocTypeText, DocTypeWebCrawl:
	default:
		return fmt.Errorf("%w: invalid document type %q", ErrValidation, d.Type)
	}
	if !versionPattern.MatchString(d.Version) {
		return fmt.Errorf("%w: invalid version %q", ErrValidation, d.Version)
	}
	if !hashPattern.MatchString(d.ContentHash) {
		return fmt.Errorf("%w: invalid content hash %q", ErrValidation, d.ContentHash)
	}
	return nil
}

// HashContent computes the canonical content hash for source bytes.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DocumentTypeForExtension maps a lowercase file extension (without dot)
// to a document type. Returns false when the extension is unsupported.
func DocumentTypeForExtension(ext string) (DocumentType, bool) {
	switch ext {
	case "md", "markdown":
		return DocTypeMarkdown, true
	case "pdf":
		return DocTypePDF, true
	case "docx":
		return DocTypeDOCX, true
	case "html", "htm":
		return DocTypeHTML, true
	case "txt", "text":
		return DocTypeText, true
	default:
		return "", false
	}
}
