package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/campaign-service/internal/config"
	"github.com/spec-kit/campaign-service/internal/domain"
)

func TestIssueReplacesExistingCode(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := NewVerificationService(config.VerificationConfig{CodeLength: 6, TTLMinutes: 10}, mailer, zap.NewNop())
	repo := store.repos().Verifications

	first, err := svc.Issue(context.Background(), repo, "alice@example.com", domain.PurposeRegistration, RegistrationMessage)
	require.NoError(t, err)

	second, err := svc.Issue(context.Background(), repo, "alice@example.com", domain.PurposePasswordReset, PasswordResetMessage)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// Only the replacement survives.
	stored := store.verifications["alice@example.com"]
	require.NotNil(t, stored)
	require.Equal(t, second.ID, stored.ID)
	require.Equal(t, domain.PurposePasswordReset, stored.Purpose)
	require.Len(t, mailer.sent, 2)
	require.Equal(t, "Password Reset", mailer.sent[1].subject)
}

func TestIssueSetsExpiry(t *testing.T) {
	store := newMemStore()
	svc := NewVerificationService(config.VerificationConfig{CodeLength: 6, TTLMinutes: 10}, &fakeMailer{}, zap.NewNop())

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	v, err := svc.Issue(context.Background(), store.repos().Verifications, "alice@example.com", domain.PurposeRegistration, RegistrationMessage)
	require.NoError(t, err)
	require.Equal(t, base.Add(10*time.Minute), v.ExpiresAt)
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		code, err := generateCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			require.True(t, ch >= '0' && ch <= '9')
		}
		seen[code] = struct{}{}
	}
	// Twenty draws of a six-digit code should not all collide.
	require.Greater(t, len(seen), 1)

	// Non-positive lengths fall back to the default.
	code, err := generateCode(0)
	require.NoError(t, err)
	require.Len(t, code, 6)
}
