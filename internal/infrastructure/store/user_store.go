package store

import (
	"context"
	"database/sql"

	"github.com/example/storefront/internal/user"
)

// PostgresUserStore implements UserStore on PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.CreatedAt)
	return err
}

func (s *PostgresUserStore) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, name, role, is_active, created_at FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, name, role, is_active, created_at FROM users WHERE email = $1`, email)
}

func (s *PostgresUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (s *PostgresUserStore) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
