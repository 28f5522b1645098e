package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerificationExpiredBoundary(t *testing.T) {
	deadline := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	v := Verification{ExpiresAt: deadline}

	require.False(t, v.Expired(deadline.Add(-time.Second)))
	// The deadline itself is already expired.
	require.True(t, v.Expired(deadline))
	require.True(t, v.Expired(deadline.Add(time.Second)))
}

func TestPaymentMinorUnits(t *testing.T) {
	require.Equal(t, int64(25000), (&Payment{Amount: 250}).MinorUnits())
	require.Equal(t, int64(24999), (&Payment{Amount: 249.99}).MinorUnits())
	// Rounds instead of truncating the float representation.
	require.Equal(t, int64(1910), (&Payment{Amount: 19.10}).MinorUnits())
}

func TestUserSanitizedStripsHash(t *testing.T) {
	user := &User{ID: "user-1", Email: "alice@example.com", PasswordHash: "bcrypt-hash"}
	clean := user.Sanitized()

	require.Empty(t, clean.PasswordHash)
	require.Equal(t, user.Email, clean.Email)
	// The original is untouched.
	require.Equal(t, "bcrypt-hash", user.PasswordHash)
}
