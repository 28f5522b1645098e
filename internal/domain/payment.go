package domain

import (
	"math"
	"time"
)

// PaymentStatus represents the lifecycle of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment records a payment attempt keyed by its gateway reference.
// The reference is the idempotency key for the whole payment lifecycle.
type Payment struct {
	ID         string
	Reference  string
	CampaignID string
	UserID     string
	Amount     float64
	Currency   string
	Status     PaymentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MinorUnits converts the amount to the gateway's minor-unit convention.
func (p *Payment) MinorUnits() int64 {
	return int64(math.Round(p.Amount * 100))
}
