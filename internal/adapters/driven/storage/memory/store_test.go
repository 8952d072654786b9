package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

func seedProject(t *testing.T, store *Store, ownerID uuid.UUID) *domain.Project {
	t.Helper()
	project, err := domain.NewProject("test project", "", nil, ownerID)
	require.NoError(t, err)
	require.NoError(t, store.ProjectStore().Save(context.Background(), project))
	return project
}

func seedDocument(t *testing.T, store *Store, projectID uuid.UUID, chunks []domain.Chunk) *domain.Document {
	t.Helper()
	doc, err := domain.NewDocument(projectID, "doc.md", domain.DocTypeMarkdown, domain.HashContent([]byte("content")))
	require.NoError(t, err)
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
	}
	require.NoError(t, store.ChunkStore().InsertDocumentWithChunks(context.Background(), doc, chunks))
	return doc
}

func TestProjectStoreGetAbsent(t *testing.T) {
	store := NewStore()

	_, err := store.ProjectStore().Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectDeleteCascades(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	project := seedProject(t, store, uuid.New())
	doc := seedDocument(t, store, project.ID, []domain.Chunk{
		{ID: domain.NewChunkID(), Text: "one", Index: 0},
		{ID: domain.NewChunkID(), Text: "two", Index: 1},
		{ID: domain.NewChunkID(), Text: "three", Index: 2},
	})

	require.NoError(t, store.ProjectStore().Delete(ctx, project.ID))

	_, err := store.DocumentStore().Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.ChunkStore().GetByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentDeleteCascadesToChunks(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	project := seedProject(t, store, uuid.New())
	doc := seedDocument(t, store, project.ID, []domain.Chunk{
		{ID: domain.NewChunkID(), Text: "one", Index: 0},
	})

	require.NoError(t, store.DocumentStore().Delete(ctx, doc.ID))

	chunks, err := store.ChunkStore().GetByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestVectorSearchOrdersBySimilarity(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	project := seedProject(t, store, uuid.New())
	seedDocument(t, store, project.ID, []domain.Chunk{
		{ID: domain.NewChunkID(), Text: "python", Index: 0, Embedding: []float32{1, 0, 0}},
		{ID: domain.NewChunkID(), Text: "neural", Index: 1, Embedding: []float32{0, 1, 0}},
	})

	hits, err := store.ChunkStore().VectorSearch(ctx, project.ID, []float32{0.9, 0.1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "python", hits[0].Chunk.Text)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
	for _, hit := range hits {
		assert.GreaterOrEqual(t, hit.Similarity, 0.0)
		assert.LessOrEqual(t, hit.Similarity, 1.0)
	}
}

func TestVectorSearchRespectsLimitAndProject(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	project := seedProject(t, store, uuid.New())
	other := seedProject(t, store, uuid.New())
	seedDocument(t, store, project.ID, []domain.Chunk{
		{ID: domain.NewChunkID(), Text: "a", Index: 0, Embedding: []float32{1, 0}},
		{ID: domain.NewChunkID(), Text: "b", Index: 1, Embedding: []float32{0, 1}},
	})
	seedDocument(t, store, other.ID, []domain.Chunk{
		{ID: domain.NewChunkID(), Text: "elsewhere", Index: 0, Embedding: []float32{1, 0}},
	})

	hits, err := store.ChunkStore().VectorSearch(ctx, project.ID, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Chunk.Text)
}

func TestKeywordSearchSkipsNonMatches(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	project := seedProject(t, store, uuid.New())
	seedDocument(t, store, project.ID, []domain.Chunk{
		{ID: domain.NewChunkID(), Text: "Python is a programming language.", Index: 0},
		{ID: domain.NewChunkID(), Text: "Neural networks are inspired by neurons.", Index: 1},
	})

	hits, err := store.ChunkStore().KeywordSearch(ctx, project.ID, "python", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Chunk.Text, "Python")
	assert.Positive(t, hits[0].Score)
}

func TestFindVersionsNewestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	project := seedProject(t, store, uuid.New())

	older, err := domain.NewDocument(project.ID, "guide.md", domain.DocTypeMarkdown, domain.HashContent([]byte("v1")))
	require.NoError(t, err)
	older.CreatedAt = time.Now().Add(-time.Hour)

	newer, err := domain.NewDocument(project.ID, "guide.md", domain.DocTypeMarkdown, domain.HashContent([]byte("v2")))
	require.NoError(t, err)
	newer.Version = "1.1.0"

	require.NoError(t, store.ChunkStore().InsertDocumentWithChunks(ctx, older, nil))
	require.NoError(t, store.ChunkStore().InsertDocumentWithChunks(ctx, newer, nil))

	versions, err := store.DocumentStore().FindVersions(ctx, project.ID, "guide.md")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "1.1.0", versions[0].Version)
}

func TestUserStoreRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Username: "ada", Email: "ada@example.com", IsActive: true}
	require.NoError(t, store.UserStore().Save(ctx, user))

	byID, err := store.UserStore().Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", byID.Username)

	byName, err := store.UserStore().GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = store.UserStore().GetByUsername(ctx, "absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
