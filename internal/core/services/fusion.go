package services

import (
	"sort"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// rrfK is the rank-smoothing constant of Reciprocal Rank Fusion.
const rrfK = 60

// FuseRRF merges a vector result list and a keyword result list by
// Reciprocal Rank Fusion: score(id) = w_v/(rank_v+k) + w_b/(rank_b+k)
// with 0-based ranks, a missing rank contributing nothing. Each id
// keeps one chunk instance (first seen); output is ordered by fused
// score descending, ties broken by insertion order. Pure and
// deterministic.
func FuseRRF(vector []driven.VectorHit, keyword []driven.KeywordHit, weightVector, weightBM25 float64) []domain.ScoredChunk {
	type fused struct {
		chunk domain.Chunk
		score float64
		bm25  *float64
	}

	var order []uuid.UUID
	byID := make(map[uuid.UUID]*fused)

	for rank, hit := range vector {
		entry, ok := byID[hit.Chunk.ID]
		if !ok {
			entry = &fused{chunk: hit.Chunk}
			byID[hit.Chunk.ID] = entry
			order = append(order, hit.Chunk.ID)
		}
		entry.score += weightVector / float64(rank+rrfK)
	}

	for rank, hit := range keyword {
		entry, ok := byID[hit.Chunk.ID]
		if !ok {
			entry = &fused{chunk: hit.Chunk}
			byID[hit.Chunk.ID] = entry
			order = append(order, hit.Chunk.ID)
		}
		entry.score += weightBM25 / float64(rank+rrfK)
		score := hit.Score
		entry.bm25 = &score
	}

	results := make([]domain.ScoredChunk, 0, len(order))
	for _, id := range order {
		entry := byID[id]
		results = append(results, domain.ScoredChunk{
			Chunk:           entry.chunk,
			SimilarityScore: entry.score,
			BM25Score:       entry.bm25,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	return results
}
