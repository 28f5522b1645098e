package repository

import (
	"context"

	"github.com/spec-kit/campaign-service/internal/domain"
)

// CampaignRepository exposes the campaign reads and the single status
// write the payment flow performs. Campaign CRUD lives elsewhere.
type CampaignRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error
}

type campaignRepository struct {
	db DBTX
}

// NewCampaignRepository constructs the repository.
func NewCampaignRepository(db DBTX) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	const query = `
        SELECT id, title, amount, status, created_at, updated_at
        FROM campaigns WHERE id=$1`

	var campaign domain.Campaign
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.Title,
		&campaign.Amount,
		&campaign.Status,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	const query = `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
