package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campaign-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, password_hash, email_status, account_status, failed_attempts, version)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.EmailStatus,
		user.AccountStatus,
		user.FailedAttempts,
		user.Version,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapInsertError(err)
}

// Update persists all mutable fields and bumps the version counter.
// Callers must have loaded the row in the same transaction.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users
        SET email=$1, password_hash=$2, email_status=$3, account_status=$4,
            failed_attempts=$5, last_login=$6, version=version+1, updated_at=NOW()
        WHERE id=$7 AND version=$8
        RETURNING version, updated_at`

	if err := r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.EmailStatus,
		user.AccountStatus,
		user.FailedAttempts,
		user.LastLogin,
		user.ID,
		user.Version,
	).Scan(&user.Version, &user.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, email, password_hash, email_status, account_status, failed_attempts,
               last_login, version, created_at, updated_at
        FROM users WHERE id=$1`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, password_hash, email_status, account_status, failed_attempts,
               last_login, version, created_at, updated_at
        FROM users WHERE LOWER(email)=LOWER($1)`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.EmailStatus,
		&user.AccountStatus,
		&user.FailedAttempts,
		&user.LastLogin,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
