package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

type userStore struct {
	pool *pgxpool.Pool
}

var _ driven.UserStore = (*userStore)(nil)

const userColumns = "id, username, email, hashed_password, is_active, roles, created_at"

func (s *userStore) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)

	user, err := scanUser(row)
	if err != nil {
		return nil, dbErr("get user", err)
	}
	return user, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)

	user, err := scanUser(row)
	if err != nil {
		return nil, dbErr("get user by username", err)
	}
	return user, nil
}

func (s *userStore) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, hashed_password, is_active, roles, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			hashed_password = EXCLUDED.hashed_password,
			is_active = EXCLUDED.is_active,
			roles = EXCLUDED.roles
	`
	_, err := s.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword,
		user.IsActive, user.Roles, user.CreatedAt,
	)
	if err != nil {
		return dbErr("save user", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&user.IsActive, &user.Roles, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
