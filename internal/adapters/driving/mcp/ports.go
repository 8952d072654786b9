package mcp

import (
	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the MCP server
// dispatches into, plus the acting user. MCP transports carry no
// caller identity, so the server acts as one configured account.
type Ports struct {
	// Retrieval answers queries.
	Retrieval driving.RetrievalService

	// Ingestion ingests documents. Optional; without it the
	// ingest_document tool is not registered.
	Ingestion driving.IngestionService

	// Projects lists and reads projects. Optional; backs resources.
	Projects driving.ProjectService

	// Documents lists documents. Optional; backs resources.
	Documents driving.DocumentService

	// UserID is the account every tool call runs as.
	UserID uuid.UUID
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.UserID == uuid.Nil {
		return ErrMissingUserID
	}
	return nil
}
