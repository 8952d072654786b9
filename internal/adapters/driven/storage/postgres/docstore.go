package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

type documentStore struct {
	pool *pgxpool.Pool
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = "id, project_id, name, type, version, content_hash, created_at, updated_at"

func (s *documentStore) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1", id)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, dbErr("get document", err)
	}
	return doc, nil
}

func (s *documentStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE project_id = $1 ORDER BY created_at DESC",
		projectID)
	if err != nil {
		return nil, dbErr("list documents", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// FindVersions returns the versions of a named document, newest first.
func (s *documentStore) FindVersions(ctx context.Context, projectID uuid.UUID, name string) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE project_id = $1 AND name = $2 ORDER BY created_at DESC",
		projectID, name)
	if err != nil {
		return nil, dbErr("find document versions", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func (s *documentStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return dbErr("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return dbErr("delete document", pgx.ErrNoRows)
	}
	return nil
}

func collectDocuments(rows pgx.Rows) ([]domain.Document, error) {
	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, dbErr("scan document", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("read documents", err)
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var (
		doc     domain.Document
		docType string
	)
	err := row.Scan(
		&doc.ID, &doc.ProjectID, &doc.Name, &docType,
		&doc.Version, &doc.ContentHash, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Type = domain.DocumentType(docType)
	return &doc, nil
}
