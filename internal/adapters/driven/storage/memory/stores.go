package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// ---- projects ----

type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

func (s *projectStore) Save(_ context.Context, project *domain.Project) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.projects[project.ID] = *project
	return nil
}

func (s *projectStore) Get(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	project, ok := s.store.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	return &project, nil
}

func (s *projectStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var projects []domain.Project
	for _, project := range s.store.projects {
		if project.OwnerID == ownerID {
			projects = append(projects, project)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// Delete removes the project and cascades to documents and chunks.
func (s *projectStore) Delete(_ context.Context, id uuid.UUID) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.projects[id]; !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	delete(s.store.projects, id)
	for _, docID := range s.store.projectDocumentsLocked(id) {
		s.store.deleteDocumentLocked(docID)
	}
	return nil
}

// ---- documents ----

type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

func (s *documentStore) Get(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	doc, ok := s.store.documents[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return &doc, nil
}

func (s *documentStore) ListByProject(_ context.Context, projectID uuid.UUID) ([]domain.Document, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.store.documents {
		if doc.ProjectID == projectID {
			docs = append(docs, doc)
		}
	}
	sortNewestFirst(docs)
	return docs, nil
}

func (s *documentStore) FindVersions(_ context.Context, projectID uuid.UUID, name string) ([]domain.Document, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.store.documents {
		if doc.ProjectID == projectID && doc.Name == name {
			docs = append(docs, doc)
		}
	}
	sortNewestFirst(docs)
	return docs, nil
}

// Delete removes the document and cascades to its chunks.
func (s *documentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.documents[id]; !ok {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	s.store.deleteDocumentLocked(id)
	return nil
}

func sortNewestFirst(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}

// ---- chunks ----

type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

func (s *chunkStore) InsertDocumentWithChunks(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	s.store.documents[doc.ID] = *doc
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Index < stored[j].Index })
	s.store.chunks[doc.ID] = stored
	return nil
}

func (s *chunkStore) GetByDocument(_ context.Context, documentID uuid.UUID) ([]domain.Chunk, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	chunks := s.store.chunks[documentID]
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

func (s *chunkStore) VectorSearch(_ context.Context, projectID uuid.UUID, embedding []float32, limit int) ([]driven.VectorHit, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var hits []driven.VectorHit
	for _, chunk := range s.projectChunksLocked(projectID) {
		hits = append(hits, driven.VectorHit{
			Chunk:      chunk,
			Similarity: cosineSimilarity(chunk.Embedding, embedding),
		})
	}
	sortHitsStable(hits, func(h driven.VectorHit) float64 { return h.Similarity })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *chunkStore) KeywordSearch(_ context.Context, projectID uuid.UUID, query string, limit int) ([]driven.KeywordHit, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var hits []driven.KeywordHit
	for _, chunk := range s.projectChunksLocked(projectID) {
		score := keywordScore(chunk.Text, query)
		if score == 0 {
			continue
		}
		hits = append(hits, driven.KeywordHit{Chunk: chunk, Score: score})
	}
	sortHitsStable(hits, func(h driven.KeywordHit) float64 { return h.Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// projectChunksLocked returns every chunk of a project in document
// insertion order, chunks ordered by index within a document. Caller
// holds at least the read lock.
func (s *chunkStore) projectChunksLocked(projectID uuid.UUID) []domain.Chunk {
	docIDs := s.store.projectDocumentsLocked(projectID)
	sort.Slice(docIDs, func(i, j int) bool {
		return s.store.documents[docIDs[i]].CreatedAt.Before(s.store.documents[docIDs[j]].CreatedAt)
	})

	var chunks []domain.Chunk
	for _, docID := range docIDs {
		chunks = append(chunks, s.store.chunks[docID]...)
	}
	return chunks
}

// ---- users ----

type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

func (s *userStore) Get(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	user, ok := s.store.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return &user, nil
}

func (s *userStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	for _, user := range s.store.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, username)
}

func (s *userStore) Save(_ context.Context, user *domain.User) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.users[user.ID] = *user
	return nil
}
