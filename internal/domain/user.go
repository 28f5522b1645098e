package domain

import "time"

// EmailStatus tracks whether the user has proven ownership of their address.
type EmailStatus string

const (
	EmailStatusUnverified EmailStatus = "UNVERIFIED"
	EmailStatusVerified   EmailStatus = "VERIFIED"
)

// AccountStatus represents lifecycle states for an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusLocked  AccountStatus = "LOCKED"
	AccountStatusDeleted AccountStatus = "DELETED"
)

// User is the domain model for campaign-platform accounts.
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	EmailStatus    EmailStatus
	AccountStatus  AccountStatus
	FailedAttempts int
	LastLogin      *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Sanitized returns a copy safe for caching and API responses.
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
