// Package postgres is the Postgres-backed persistence layer. One
// connection pool serves every store; pgvector holds the embeddings
// and a generated tsvector column feeds keyword search. Migrations are
// embedded and applied on startup.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpuslabs/corpusd/internal/adapters/driven/storage/postgres/migrations"
	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// dimensionPlaceholder is substituted in migration files with the
// deployment's embedding dimension. The dimension is fixed per
// deployment; changing it requires a fresh schema.
const dimensionPlaceholder = "{{embedding_dimensions}}"

// Store is the unified Postgres storage. The typed store interfaces
// are views over the same pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres, verifies the connection and applies
// pending migrations.
func NewStore(ctx context.Context, dsn string, embeddingDim int) (*Store, error) {
	if embeddingDim <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", domain.ErrValidation)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", domain.ErrDatabase, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", domain.ErrDatabase, err)
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx, embeddingDim); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies pending migrations in version order. A
// schema_migrations table records the applied versions.
func (s *Store) Migrate(ctx context.Context, embeddingDim int) error {
	return s.migrate(ctx, migrations.FS, embeddingDim)
}

func (s *Store) migrate(ctx context.Context, fsys embed.FS, embeddingDim int) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: creating schema_migrations table: %w", domain.ErrDatabase, err)
	}

	var currentVersion int
	row := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("%w: getting current version: %w", domain.ErrDatabase, err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		sql := strings.ReplaceAll(string(content), dimensionPlaceholder, strconv.Itoa(embeddingDim))

		if _, err := s.pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("%w: executing migration %s: %w", domain.ErrDatabase, name, err)
		}
		if _, err := s.pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("%w: recording migration %s: %w", domain.ErrDatabase, name, err)
		}
	}

	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ProjectStore returns a ProjectStore backed by this pool.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{pool: s.pool}
}

// DocumentStore returns a DocumentStore backed by this pool.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{pool: s.pool}
}

// ChunkStore returns a ChunkStore backed by this pool.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{pool: s.pool}
}

// UserStore returns a UserStore backed by this pool.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{pool: s.pool}
}

// dbErr classifies a storage failure: absent rows map to
// domain.ErrNotFound, everything else to domain.ErrDatabase.
func dbErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrDatabase, op, err)
}
