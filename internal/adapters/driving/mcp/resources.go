package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "corpusd://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "The acting user's projects",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/documents",
		Name:        "project-documents",
		Description: "Documents ingested into a specific project",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleProjectsResource returns the acting user's projects.
func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Projects == nil {
		return jsonResource(req.Params.URI, []byte("[]")), nil
	}

	projects, err := s.ports.Projects.List(ctx, s.ports.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	type projectInfo struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	}

	infos := make([]projectInfo, len(projects))
	for i := range projects {
		infos[i] = projectInfo{
			ID:     projects[i].ID.String(),
			Name:   projects[i].Name,
			Status: string(projects[i].Status),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling projects: %w", err)
	}
	return jsonResource(req.Params.URI, data), nil
}

// handleDocumentsResource returns documents for a specific project.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	projectID, ok := extractProjectID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Documents.List(ctx, projectID, s.ports.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Type    string `json:"type"`
		Version string `json:"version"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:      docs[i].ID.String(),
			Name:    docs[i].Name,
			Type:    string(docs[i].Type),
			Version: docs[i].Version,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return jsonResource(req.Params.URI, data), nil
}

func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractProjectID parses a URI like corpusd://projects/{projectId}/documents.
func extractProjectID(uri string) (uuid.UUID, bool) {
	const prefix = uriScheme + "projects/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return uuid.Nil, false
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
