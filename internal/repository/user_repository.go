package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, id int64, current, next string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, id int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, full_name, password_hash, role, is_active, refresh_token, refresh_token_expires_at, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, full_name, password_hash, role, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET email=$1, full_name=$2, password_hash=$3, role=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

// SetRefreshToken overwrites the stored refresh token. Used on login and
// registration, where the previous session (if any) is superseded.
func (r *userRepository) SetRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	const query = `
        UPDATE users SET refresh_token=$1, refresh_token_expires_at=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, token, expiresAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RotateRefreshToken swaps the stored token for a new one in a single
// statement. The WHERE clause is the compare-and-swap: if the stored
// token no longer equals current (superseded, logged out, or the user
// was deactivated) no row is touched and pgx.ErrNoRows is returned.
func (r *userRepository) RotateRefreshToken(ctx context.Context, id int64, current, next string, expiresAt time.Time) error {
	const query = `
        UPDATE users SET refresh_token=$1, refresh_token_expires_at=$2, updated_at=NOW()
        WHERE id=$3 AND refresh_token=$4 AND is_active`

	cmd, err := r.pool.Exec(ctx, query, next, expiresAt, id, current)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ClearRefreshToken drops the stored token. Idempotent: clearing an
// already-clear slot is not an error.
func (r *userRepository) ClearRefreshToken(ctx context.Context, id int64) error {
	const query = `
        UPDATE users SET refresh_token=NULL, refresh_token_expires_at=NULL, updated_at=NOW()
        WHERE id=$1`

	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.RefreshToken,
		&user.RefreshTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
