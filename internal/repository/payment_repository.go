package repository

import (
	"context"

	"github.com/spec-kit/campaign-service/internal/domain"
)

// PaymentRepository manages payment attempt persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}

type paymentRepository struct {
	db DBTX
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db DBTX) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (reference, campaign_id, user_id, amount, currency, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		payment.Reference,
		payment.CampaignID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	return mapInsertError(err)
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	const query = `
        SELECT id, reference, campaign_id, user_id, amount, currency, status, created_at, updated_at
        FROM payments WHERE reference=$1`

	var payment domain.Payment
	if err := r.db.QueryRow(ctx, query, reference).Scan(
		&payment.ID,
		&payment.Reference,
		&payment.CampaignID,
		&payment.UserID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	const query = `UPDATE payments SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
