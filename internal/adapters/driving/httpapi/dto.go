package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

type createProjectRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"max=32,dive,max=64"`
}

type updateProjectRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Tags        []string `json:"tags" validate:"omitempty,max=32,dive,max=64"`
}

type projectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		Status:      string(p.Status),
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type documentResponse struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Version     string    `json:"version"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDocumentResponse(d *domain.Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		Name:        d.Name,
		Type:        string(d.Type),
		Version:     d.Version,
		ContentHash: d.ContentHash,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type uploadResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
}

type ingestURLRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
	URL       string    `json:"url" validate:"required,url"`
	Bump      *string   `json:"bump" validate:"omitempty,oneof=major minor patch"`
}

type queryRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
	QueryText string    `json:"query_text" validate:"required,max=8192"`

	TopK            *int  `json:"top_k" validate:"omitempty,min=1"`
	UseHybridSearch *bool `json:"use_hybrid_search"`
	UseReranking    *bool `json:"use_re_ranking"`
	UseAgenticRAG   *bool `json:"use_agentic_rag"`
}

type queryResultEntry struct {
	ID              uuid.UUID      `json:"id"`
	DocumentID      uuid.UUID      `json:"document_id"`
	ChunkText       string         `json:"chunk_text"`
	ChunkIndex      int            `json:"chunk_index"`
	Metadata        map[string]any `json:"metadata"`
	SimilarityScore float64        `json:"similarity_score"`
	BM25Score       *float64       `json:"bm25_score"`
	RerankScore     *float64       `json:"rerank_score"`
}

type queryResponse struct {
	QueryID           uuid.UUID          `json:"query_id"`
	Results           []queryResultEntry `json:"results"`
	TotalResults      int                `json:"total_results"`
	SynthesizedAnswer *string            `json:"synthesized_answer"`
}

func toQueryResponse(r *domain.QueryResult) queryResponse {
	resp := queryResponse{
		QueryID:           r.QueryID,
		Results:           make([]queryResultEntry, 0, len(r.Results)),
		TotalResults:      r.TotalResults,
		SynthesizedAnswer: r.SynthesizedAnswer,
	}
	for _, sc := range r.Results {
		resp.Results = append(resp.Results, queryResultEntry{
			ID:              sc.Chunk.ID,
			DocumentID:      sc.Chunk.DocumentID,
			ChunkText:       sc.Chunk.Text,
			ChunkIndex:      sc.Chunk.Index,
			Metadata:        sc.Chunk.Metadata,
			SimilarityScore: sc.SimilarityScore,
			BM25Score:       sc.BM25Score,
			RerankScore:     sc.RerankScore,
		})
	}
	return resp
}
