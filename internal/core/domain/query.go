package domain

import "github.com/google/uuid"

// QueryOptions are the feature flags for a retrieval request. Each nil
// field falls back to the deployment default.
type QueryOptions struct {
	// TopK caps the number of results. Clamped to the configured maximum.
	TopK *int

	// Hybrid enables lexical search fused with vector search.
	Hybrid *bool

	// Rerank enables LLM re-ranking of the candidate set.
	Rerank *bool

	// Synthesize enables prose answer generation over the results.
	Synthesize *bool
}

// ScoredChunk is one retrieval hit. SimilarityScore carries cosine
// similarity for vector-only retrieval and the fused RRF score when the
// hybrid branch ran. The optional scores stay nil when their branch did
// not run.
type ScoredChunk struct {
	Chunk Chunk

	SimilarityScore float64

	// BM25Score is the lexical relevance score, set only for hits that
	// appeared in the keyword list of a hybrid query.
	BM25Score *float64

	// RerankScore is the linear score assigned by re-ranking.
	RerankScore *float64
}

// QueryResult is the transient, cacheable outcome of one retrieval request.
type QueryResult struct {
	// QueryID is freshly stamped per request, including cache misses.
	QueryID uuid.UUID

	// Results are ordered by descending relevance.
	Results []ScoredChunk

	// TotalResults is the exact number of returned results.
	TotalResults int

	// SynthesizedAnswer is the generated prose answer, nil when synthesis
	// was disabled or degraded.
	SynthesizedAnswer *string
}
