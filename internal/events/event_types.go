package events

import (
	"time"

	"github.com/spec-kit/campaign-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventEmailVerified    EventType = "email_verified"
	EventAccountLocked    EventType = "account_locked"
	EventPaymentSucceeded EventType = "payment_succeeded"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
}

// EmailVerifiedPayload payload.
type EmailVerifiedPayload struct {
	Email string `json:"email"`
}

// AccountLockedPayload payload.
type AccountLockedPayload struct {
	Email          string `json:"email"`
	FailedAttempts int    `json:"failed_attempts"`
}

// PaymentSucceededPayload payload.
type PaymentSucceededPayload struct {
	Reference  string                `json:"reference"`
	CampaignID string                `json:"campaign_id"`
	UserID     string                `json:"user_id"`
	Amount     float64               `json:"amount"`
	Currency   string                `json:"currency"`
	Status     domain.PaymentStatus  `json:"status"`
	NewStatus  domain.CampaignStatus `json:"campaign_status"`
}
