package repository

import (
	"context"

	"github.com/spec-kit/campaign-service/internal/domain"
)

// VerificationRepository manages one-time code persistence.
type VerificationRepository interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByEmail(ctx context.Context, email string) (*domain.Verification, error)
	UpdateTries(ctx context.Context, id string, tries int) error
	Delete(ctx context.Context, id string) error
	DeleteByEmail(ctx context.Context, email string) error
}

type verificationRepository struct {
	db DBTX
}

// NewVerificationRepository constructs the repository.
func NewVerificationRepository(db DBTX) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	const query = `
        INSERT INTO verifications (email, purpose, passcode, tries, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		v.Email,
		v.Purpose,
		v.Passcode,
		v.Tries,
		v.ExpiresAt,
	).Scan(&v.ID, &v.CreatedAt)
	return mapInsertError(err)
}

func (r *verificationRepository) GetByEmail(ctx context.Context, email string) (*domain.Verification, error) {
	const query = `
        SELECT id, email, purpose, passcode, tries, expires_at, created_at
        FROM verifications WHERE LOWER(email)=LOWER($1)`

	var v domain.Verification
	if err := r.db.QueryRow(ctx, query, email).Scan(
		&v.ID,
		&v.Email,
		&v.Purpose,
		&v.Passcode,
		&v.Tries,
		&v.ExpiresAt,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *verificationRepository) UpdateTries(ctx context.Context, id string, tries int) error {
	const query = `UPDATE verifications SET tries=$1 WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, tries, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *verificationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM verifications WHERE id=$1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *verificationRepository) DeleteByEmail(ctx context.Context, email string) error {
	const query = `DELETE FROM verifications WHERE LOWER(email)=LOWER($1)`
	_, err := r.db.Exec(ctx, query, email)
	return err
}
