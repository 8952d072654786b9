package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

type projectStore struct {
	pool *pgxpool.Pool
}

var _ driven.ProjectStore = (*projectStore)(nil)

func (s *projectStore) Save(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, owner_id, name, description, status, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			tags = EXCLUDED.tags,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.pool.Exec(ctx, query,
		project.ID, project.OwnerID, project.Name, project.Description,
		string(project.Status), project.Tags, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return dbErr("save project", err)
	}
	return nil
}

func (s *projectStore) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, description, status, tags, created_at, updated_at
		FROM projects WHERE id = $1
	`, id)

	project, err := scanProject(row)
	if err != nil {
		return nil, dbErr("get project", err)
	}
	return project, nil
}

func (s *projectStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, name, description, status, tags, created_at, updated_at
		FROM projects WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, dbErr("list projects", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, dbErr("scan project", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("list projects", err)
	}
	return projects, nil
}

func (s *projectStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return dbErr("delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return dbErr("delete project", pgx.ErrNoRows)
	}
	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		project domain.Project
		status  string
	)
	err := row.Scan(
		&project.ID, &project.OwnerID, &project.Name, &project.Description,
		&status, &project.Tags, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.Status = domain.ProjectStatus(status)
	return &project, nil
}
