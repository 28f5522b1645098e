package domain

import "time"

// VerificationPurpose distinguishes what a one-time code unlocks.
type VerificationPurpose string

const (
	PurposeRegistration  VerificationPurpose = "REGISTRATION"
	PurposePasswordReset VerificationPurpose = "PASSWORD_RESET"
)

// Verification is a short-lived one-time passcode tied to an email.
// At most one live row per email exists; issuance deletes and recreates.
type Verification struct {
	ID        string
	Email     string
	Purpose   VerificationPurpose
	Passcode  string
	Tries     int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
// The boundary is inclusive: a code expiring exactly now is expired.
func (v *Verification) Expired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}
