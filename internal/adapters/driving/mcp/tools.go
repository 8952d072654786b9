package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project to query"`
	Query     string `json:"query" jsonschema:"the natural-language question"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return"`
	Hybrid    *bool  `json:"hybrid,omitempty" jsonschema:"fuse lexical search with vector search"`
	Rerank    *bool  `json:"rerank,omitempty" jsonschema:"re-rank the candidates with the LLM"`
	Answer    *bool  `json:"answer,omitempty" jsonschema:"synthesize a prose answer from the results"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Results []QueryResultOutput `json:"results"`
	Count   int                 `json:"count"`
	Answer  string              `json:"answer,omitempty"`
}

// QueryResultOutput is a single retrieval hit.
type QueryResultOutput struct {
	ChunkID     string   `json:"chunk_id"`
	DocumentID  string   `json:"document_id"`
	Text        string   `json:"text"`
	Score       float64  `json:"score"`
	RerankScore *float64 `json:"rerank_score,omitempty"`
}

// IngestInput is the input schema for the ingest_document tool.
// Exactly one of content and content_base64 must be set.
type IngestInput struct {
	ProjectID     string `json:"project_id" jsonschema:"the project to ingest into"`
	Filename      string `json:"filename" jsonschema:"the document filename; the extension selects the parser"`
	Content       string `json:"content,omitempty" jsonschema:"plain-text document content"`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"base64-encoded document bytes for binary formats"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Query a project's knowledge base",
	}, s.handleQuery)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_document",
			Description: "Ingest a document into a project",
		}, s.handleIngest)
	}
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	projectID, err := uuid.Parse(input.ProjectID)
	if err != nil {
		return nil, QueryOutput{}, fmt.Errorf("%w: invalid project_id", domain.ErrValidation)
	}

	opts := domain.QueryOptions{
		Hybrid:     input.Hybrid,
		Rerank:     input.Rerank,
		Synthesize: input.Answer,
	}
	if input.TopK > 0 {
		opts.TopK = &input.TopK
	}

	result, err := s.ports.Retrieval.Query(ctx, projectID, s.ports.UserID, input.Query, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Results: make([]QueryResultOutput, len(result.Results)),
		Count:   result.TotalResults,
	}
	if result.SynthesizedAnswer != nil {
		output.Answer = *result.SynthesizedAnswer
	}
	for i := range result.Results {
		sc := result.Results[i]
		output.Results[i] = QueryResultOutput{
			ChunkID:     sc.Chunk.ID.String(),
			DocumentID:  sc.Chunk.DocumentID.String(),
			Text:        sc.Chunk.Text,
			Score:       sc.SimilarityScore,
			RerankScore: sc.RerankScore,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	projectID, err := uuid.Parse(input.ProjectID)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("%w: invalid project_id", domain.ErrValidation)
	}

	data, err := ingestData(input)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	docID, err := s.ports.Ingestion.IngestFile(ctx, driving.IngestFileRequest{
		ProjectID: projectID,
		UserID:    s.ports.UserID,
		Filename:  input.Filename,
		Data:      data,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{DocumentID: docID.String()}, nil
}

func ingestData(input IngestInput) ([]byte, error) {
	switch {
	case input.Content != "" && input.ContentBase64 != "":
		return nil, fmt.Errorf("%w: content and content_base64 are mutually exclusive", domain.ErrValidation)
	case input.Content != "":
		return []byte(input.Content), nil
	case input.ContentBase64 != "":
		data, err := base64.StdEncoding.DecodeString(input.ContentBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 content: %v", domain.ErrValidation, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: one of content or content_base64 is required", domain.ErrValidation)
	}
}
