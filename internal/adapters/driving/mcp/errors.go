// Package mcp provides a Model Context Protocol server adapter. It
// exposes retrieval and ingestion as tools so AI assistants can query
// and feed the knowledge base over stdio or HTTP.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when no retrieval service
	// is provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrMissingUserID is returned when no acting user is configured.
	ErrMissingUserID = errors.New("mcp: acting user id is required")
)
