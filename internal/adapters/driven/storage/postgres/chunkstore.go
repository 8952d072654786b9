package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

type chunkStore struct {
	pool *pgxpool.Pool
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// InsertDocumentWithChunks writes the document row and its chunk batch
// in one transaction. A failure anywhere rolls the whole batch back,
// leaving no orphan document row.
func (s *chunkStore) InsertDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbErr("begin insert", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (id, project_id, name, type, version, content_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, doc.ID, doc.ProjectID, doc.Name, string(doc.Type),
		doc.Version, doc.ContentHash, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return dbErr("insert document", err)
	}

	for _, chunk := range chunks {
		_, err = tx.Exec(ctx, `
			INSERT INTO knowledge_items (id, document_id, chunk_index, chunk_text, embedding, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, chunk.ID, chunk.DocumentID, chunk.Index, chunk.Text,
			pgvector.NewVector(chunk.Embedding), chunk.Metadata, chunk.CreatedAt)
		if err != nil {
			return dbErr("insert chunk", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dbErr("commit insert", err)
	}
	return nil
}

func (s *chunkStore) GetByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Chunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, chunk_index, chunk_text, embedding, metadata, created_at
		FROM knowledge_items
		WHERE document_id = $1
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, dbErr("get chunks", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, _, err := scanChunk(rows, false)
		if err != nil {
			return nil, dbErr("scan chunk", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("get chunks", err)
	}
	return chunks, nil
}

// VectorSearch ranks a project's chunks by cosine similarity to the
// query embedding. pgvector's <=> operator is cosine distance, so the
// similarity is 1 - distance.
func (s *chunkStore) VectorSearch(ctx context.Context, projectID uuid.UUID, embedding []float32, limit int) ([]driven.VectorHit, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := s.pool.Query(ctx, `
		SELECT ki.id, ki.document_id, ki.chunk_index, ki.chunk_text, ki.embedding, ki.metadata, ki.created_at,
		       1 - (ki.embedding <=> $2) AS similarity
		FROM knowledge_items ki
		JOIN documents d ON ki.document_id = d.id
		WHERE d.project_id = $1
		ORDER BY ki.embedding <=> $2
		LIMIT $3
	`, projectID, vec, limit)
	if err != nil {
		return nil, dbErr("vector search", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		chunk, score, err := scanChunk(rows, true)
		if err != nil {
			return nil, dbErr("scan vector hit", err)
		}
		hits = append(hits, driven.VectorHit{Chunk: chunk, Similarity: score})
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("vector search", err)
	}
	return hits, nil
}

// KeywordSearch ranks a project's chunks by full-text relevance. The
// tsv column is generated from chunk_text and GIN indexed.
func (s *chunkStore) KeywordSearch(ctx context.Context, projectID uuid.UUID, query string, limit int) ([]driven.KeywordHit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ki.id, ki.document_id, ki.chunk_index, ki.chunk_text, ki.embedding, ki.metadata, ki.created_at,
		       ts_rank_cd(ki.tsv, plainto_tsquery('english', $2)) AS score
		FROM knowledge_items ki
		JOIN documents d ON ki.document_id = d.id
		WHERE d.project_id = $1
		  AND ki.tsv @@ plainto_tsquery('english', $2)
		ORDER BY score DESC
		LIMIT $3
	`, projectID, query, limit)
	if err != nil {
		return nil, dbErr("keyword search", err)
	}
	defer rows.Close()

	var hits []driven.KeywordHit
	for rows.Next() {
		chunk, score, err := scanChunk(rows, true)
		if err != nil {
			return nil, dbErr("scan keyword hit", err)
		}
		hits = append(hits, driven.KeywordHit{Chunk: chunk, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("keyword search", err)
	}
	return hits, nil
}

// scanChunk reads one knowledge_items row, optionally with a trailing
// score column.
func scanChunk(row pgx.Row, withScore bool) (domain.Chunk, float64, error) {
	var (
		chunk domain.Chunk
		vec   pgvector.Vector
		score float64
	)

	dest := []any{
		&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Text,
		&vec, &chunk.Metadata, &chunk.CreatedAt,
	}
	if withScore {
		dest = append(dest, &score)
	}

	if err := row.Scan(dest...); err != nil {
		return domain.Chunk{}, 0, err
	}
	chunk.Embedding = vec.Slice()
	return chunk, score, nil
}
