package domain

import "time"

// CampaignStatus represents the funding state of a campaign.
type CampaignStatus string

const (
	CampaignStatusPending   CampaignStatus = "PENDING"
	CampaignStatusActive    CampaignStatus = "ACTIVE"
	CampaignStatusPaid      CampaignStatus = "PAID"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
)

// Campaign is the minimal campaign surface the payment flow touches.
// Full campaign management lives outside this service.
type Campaign struct {
	ID        string
	Title     string
	Amount    float64
	Status    CampaignStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
