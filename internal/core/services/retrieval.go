package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corpuslabs/corpusd/internal/config"
	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
	"github.com/corpuslabs/corpusd/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers queries over a project's chunks: vector
// search, optional hybrid fusion, optional LLM re-ranking, optional
// answer synthesis, all behind a best-effort result cache.
type RetrievalService struct {
	projectStore driven.ProjectStore
	chunkStore   driven.ChunkStore
	embedder     driven.Provider
	reranker     *Reranker
	synthesizer  *Synthesizer
	cache        driven.Cache
	cfg          config.RAGConfig
}

// NewRetrievalService creates a retrieval service. Cache may be nil
// when caching is disabled.
func NewRetrievalService(
	projectStore driven.ProjectStore,
	chunkStore driven.ChunkStore,
	embedder driven.Provider,
	completer driven.Provider,
	cache driven.Cache,
	cfg config.RAGConfig,
) *RetrievalService {
	return &RetrievalService{
		projectStore: projectStore,
		chunkStore:   chunkStore,
		embedder:     embedder,
		reranker:     NewReranker(completer, cfg.RerankingTopK),
		synthesizer:  NewSynthesizer(completer, cfg.SynthesisPrompt, cfg.SynthesisMaxTokens),
		cache:        cache,
		cfg:          cfg,
	}
}

// Query runs the retrieval pipeline. The owner check happens before
// any embedding or search backend is touched.
func (s *RetrievalService) Query(ctx context.Context, projectID, userID uuid.UUID, queryText string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	project, err := s.projectStore.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, fmt.Errorf("%w: project %s is not owned by user %s", domain.ErrUnauthorized, projectID, userID)
	}

	topK := s.resolveTopK(opts.TopK)
	hybrid := resolveFlag(opts.Hybrid, s.cfg.UseHybridSearch)
	rerank := resolveFlag(opts.Rerank, s.cfg.UseReranking)
	synthesize := resolveFlag(opts.Synthesize, s.cfg.UseAgenticRAG)

	key := CacheKey(s.cfg.CacheKeyPrefix, projectID, queryText, hybrid, rerank, topK)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	queryEmbedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbedding, err)
	}

	vectorHits, err := s.chunkStore.VectorSearch(ctx, projectID, queryEmbedding, topK)
	if err != nil {
		return nil, err
	}

	var results []domain.ScoredChunk
	if hybrid {
		keywordHits, err := s.chunkStore.KeywordSearch(ctx, projectID, queryText, topK)
		if err != nil {
			return nil, err
		}
		results = FuseRRF(vectorHits, keywordHits, s.cfg.HybridWeightVector, s.cfg.HybridWeightBM25)
		if len(results) > topK {
			results = results[:topK]
		}
	} else {
		results = make([]domain.ScoredChunk, 0, len(vectorHits))
		for _, hit := range vectorHits {
			results = append(results, domain.ScoredChunk{
				Chunk:           hit.Chunk,
				SimilarityScore: hit.Similarity,
			})
		}
	}

	// An empty candidate set short-circuits: no re-rank call, no
	// synthesis call.
	var answer *string
	if len(results) > 0 {
		if rerank {
			results = s.reranker.Rerank(ctx, queryText, results)
		}
		if synthesize {
			answer = s.synthesizer.Synthesize(ctx, queryText, results)
		}
	}

	result := &domain.QueryResult{
		QueryID:           uuid.New(),
		Results:           results,
		TotalResults:      len(results),
		SynthesizedAnswer: answer,
	}

	s.cacheSet(ctx, key, result)
	return result, nil
}

func (s *RetrievalService) resolveTopK(requested *int) int {
	topK := s.cfg.DefaultTopK
	if requested != nil && *requested > 0 {
		topK = *requested
	}
	if s.cfg.MaxTopK > 0 && topK > s.cfg.MaxTopK {
		topK = s.cfg.MaxTopK
	}
	return topK
}

func resolveFlag(requested *bool, fallback bool) bool {
	if requested != nil {
		return *requested
	}
	return fallback
}

// CacheKey derives the cache key of one query. Pure: identical
// parameters produce identical keys and any single change produces a
// different key.
func CacheKey(prefix string, projectID uuid.UUID, queryText string, hybrid, rerank bool, topK int) string {
	digest := sha256.Sum256([]byte(queryText))
	return prefix + projectID.String() + ":" +
		hex.EncodeToString(digest[:])[:16] + ":" +
		strconv.FormatBool(hybrid) + ":" +
		strconv.FormatBool(rerank) + ":" +
		strconv.Itoa(topK)
}

// cachedResult is the JSON shape stored in the cache.
type cachedResult struct {
	QueryID           uuid.UUID     `json:"query_id"`
	Results           []cachedChunk `json:"results"`
	TotalResults      int           `json:"total_results"`
	SynthesizedAnswer *string       `json:"synthesized_answer"`
}

type cachedChunk struct {
	ID              uuid.UUID      `json:"id"`
	DocumentID      uuid.UUID      `json:"document_id"`
	ChunkText       string         `json:"chunk_text"`
	ChunkIndex      int            `json:"chunk_index"`
	Embedding       []float32      `json:"embedding"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	SimilarityScore float64        `json:"similarity_score"`
	BM25Score       *float64       `json:"bm25_score"`
	RerankScore     *float64       `json:"rerank_score"`
}

// cacheGet returns a deserialized hit with a freshly stamped query ID.
// Any cache or decode failure is a miss.
func (s *RetrievalService) cacheGet(ctx context.Context, key string) (*domain.QueryResult, bool) {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return nil, false
	}

	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		logger.Warn("cache payload undecodable, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}

	result := &domain.QueryResult{
		QueryID:           uuid.New(),
		TotalResults:      cached.TotalResults,
		SynthesizedAnswer: cached.SynthesizedAnswer,
	}
	for _, c := range cached.Results {
		result.Results = append(result.Results, domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:         c.ID,
				DocumentID: c.DocumentID,
				Text:       c.ChunkText,
				Index:      c.ChunkIndex,
				Embedding:  c.Embedding,
				Metadata:   c.Metadata,
				CreatedAt:  c.CreatedAt,
			},
			SimilarityScore: c.SimilarityScore,
			BM25Score:       c.BM25Score,
			RerankScore:     c.RerankScore,
		})
	}
	return result, true
}

// cacheSet stores the result best-effort.
func (s *RetrievalService) cacheSet(ctx context.Context, key string, result *domain.QueryResult) {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return
	}

	cached := cachedResult{
		QueryID:           result.QueryID,
		Results:           make([]cachedChunk, 0, len(result.Results)),
		TotalResults:      result.TotalResults,
		SynthesizedAnswer: result.SynthesizedAnswer,
	}
	for _, r := range result.Results {
		cached.Results = append(cached.Results, cachedChunk{
			ID:              r.Chunk.ID,
			DocumentID:      r.Chunk.DocumentID,
			ChunkText:       r.Chunk.Text,
			ChunkIndex:      r.Chunk.Index,
			Embedding:       r.Chunk.Embedding,
			Metadata:        r.Chunk.Metadata,
			CreatedAt:       r.Chunk.CreatedAt,
			SimilarityScore: r.SimilarityScore,
			BM25Score:       r.BM25Score,
			RerankScore:     r.RerankScore,
		})
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		logger.Warn("serializing result for cache failed", zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, string(payload), s.cfg.CacheTTL)
}
