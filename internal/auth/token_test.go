package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndParseRoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 60)

	token, expiresAt, err := tm.Sign("user-123", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "alice@example.com", claims.Email)
	require.NotEmpty(t, claims.TokenID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).Sign("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).Parse(token)
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 60)
	past := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return past }

	token, expiresAt, err := tm.Sign("user-123", "alice@example.com")
	require.NoError(t, err)
	require.True(t, expiresAt.Before(time.Now()))

	_, err = tm.Parse(token)
	require.Error(t, err)
}

func TestTokenIDsAreUnique(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 60)

	first, _, err := tm.Sign("user-123", "alice@example.com")
	require.NoError(t, err)
	second, _, err := tm.Sign("user-123", "alice@example.com")
	require.NoError(t, err)

	firstClaims, err := tm.Parse(first)
	require.NoError(t, err)
	secondClaims, err := tm.Parse(second)
	require.NoError(t, err)
	require.NotEqual(t, firstClaims.TokenID, secondClaims.TokenID)
}
