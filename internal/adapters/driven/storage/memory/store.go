// Package memory is an in-memory implementation of the store
// contracts. It backs the service tests and mirrors the Postgres
// behavior where it matters: not-found errors, cascade deletes, and
// the two search orderings.
package memory

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// Store holds every entity behind one lock so cascade deletes stay
// consistent.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]domain.User
	projects  map[uuid.UUID]domain.Project
	documents map[uuid.UUID]domain.Document
	chunks    map[uuid.UUID][]domain.Chunk // keyed by document ID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:     make(map[uuid.UUID]domain.User),
		projects:  make(map[uuid.UUID]domain.Project),
		documents: make(map[uuid.UUID]domain.Document),
		chunks:    make(map[uuid.UUID][]domain.Chunk),
	}
}

// ProjectStore returns a ProjectStore view.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// DocumentStore returns a DocumentStore view.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ChunkStore returns a ChunkStore view.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// UserStore returns a UserStore view.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

// deleteDocumentLocked removes a document and its chunks. Caller holds
// the write lock.
func (s *Store) deleteDocumentLocked(id uuid.UUID) {
	delete(s.documents, id)
	delete(s.chunks, id)
}

// projectDocumentsLocked returns the IDs of a project's documents.
// Caller holds at least the read lock.
func (s *Store) projectDocumentsLocked(projectID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for id, doc := range s.documents {
		if doc.ProjectID == projectID {
			ids = append(ids, id)
		}
	}
	return ids
}

// cosineSimilarity is the normalized dot product, 0 for zero vectors
// or mismatched dimensions.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// keywordScore counts query term occurrences in the text, both
// lowercased. Zero means no match.
func keywordScore(text, query string) float64 {
	haystack := strings.ToLower(text)
	var score float64
	for _, term := range strings.Fields(strings.ToLower(query)) {
		term = strings.Trim(term, ".,!?;:\"'()")
		if term == "" {
			continue
		}
		score += float64(strings.Count(haystack, term))
	}
	return score
}

// sortHitsStable orders hits by descending score, preserving insertion
// order between equals.
func sortHitsStable[T any](hits []T, score func(T) float64) {
	sort.SliceStable(hits, func(i, j int) bool {
		return score(hits[i]) > score(hits[j])
	})
}
