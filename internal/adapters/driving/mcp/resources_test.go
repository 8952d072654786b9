package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleProjectsResource(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("lists projects", func(t *testing.T) {
		projects := &mockProjects{projects: []domain.Project{
			{ID: uuid.New(), Name: "docs", Status: domain.ProjectActive},
			{ID: uuid.New(), Name: "old", Status: domain.ProjectArchived},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}, Projects: projects, UserID: userID})
		require.NoError(t, err)

		result, err := server.handleProjectsResource(ctx, readRequest(uriScheme+"projects"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var infos []map[string]string
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "docs", infos[0]["name"])
		assert.Equal(t, "Archived", infos[1]["status"])
	})

	t.Run("without a project service returns an empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}, UserID: userID})
		require.NoError(t, err)

		result, err := server.handleProjectsResource(ctx, readRequest(uriScheme+"projects"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("lists project documents", func(t *testing.T) {
		documents := &mockDocuments{docs: []domain.Document{
			{ID: uuid.New(), Name: "guide.md", Type: domain.DocTypeMarkdown, Version: "1.0.0"},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}, Documents: documents, UserID: userID})
		require.NoError(t, err)

		uri := uriScheme + "projects/" + projectID.String() + "/documents"
		result, err := server.handleDocumentsResource(ctx, readRequest(uri))
		require.NoError(t, err)

		var infos []map[string]string
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 1)
		assert.Equal(t, "guide.md", infos[0]["name"])
		assert.Equal(t, "1.0.0", infos[0]["version"])
		assert.Equal(t, projectID, documents.lastProjectID)
	})

	t.Run("rejects malformed URIs", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}, Documents: &mockDocuments{}, UserID: userID})
		require.NoError(t, err)

		for _, uri := range []string{
			uriScheme + "projects/not-a-uuid/documents",
			uriScheme + "projects/" + projectID.String(),
			"other://projects/" + projectID.String() + "/documents",
		} {
			_, err := server.handleDocumentsResource(ctx, readRequest(uri))
			assert.Error(t, err, uri)
		}
	})
}

func TestExtractProjectID(t *testing.T) {
	projectID := uuid.New()

	id, ok := extractProjectID(uriScheme + "projects/" + projectID.String() + "/documents")
	require.True(t, ok)
	assert.Equal(t, projectID, id)

	_, ok = extractProjectID(uriScheme + "projects//documents")
	assert.False(t, ok)
	_, ok = extractProjectID(uriScheme + "documents/" + projectID.String())
	assert.False(t, ok)
}
