package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/campaign-service/internal/config"
	"github.com/spec-kit/campaign-service/internal/domain"
	"github.com/spec-kit/campaign-service/internal/mail"
	"github.com/spec-kit/campaign-service/internal/repository"
)

// MessageTemplate renders the subject and body for a verification email.
type MessageTemplate func(code string, expiresAt time.Time) (subject, body string)

// RegistrationMessage renders the email-verification message.
func RegistrationMessage(code string, expiresAt time.Time) (string, string) {
	return "Account Registration",
		fmt.Sprintf("Thank you for registering. Use %s to verify your email. The code expires at %s.",
			code, expiresAt.Format(time.RFC1123))
}

// PasswordResetMessage renders the password-reset message.
func PasswordResetMessage(code string, expiresAt time.Time) (string, string) {
	return "Password Reset",
		fmt.Sprintf("Use %s to reset your password. The code expires at %s.",
			code, expiresAt.Format(time.RFC1123))
}

// VerificationService owns the one-time code issuance policy.
type VerificationService struct {
	mailer mail.Mailer
	logger *zap.Logger
	cfg    config.VerificationConfig
	now    func() time.Time
}

// NewVerificationService builds the service.
func NewVerificationService(cfg config.VerificationConfig, mailer mail.Mailer, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		mailer: mailer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Issue replaces any live code for the email with a fresh one and
// dispatches the rendered message. The repository must be bound to the
// caller's transaction. A failed dispatch is logged, never escalated:
// the caller can always trigger a re-issue.
func (s *VerificationService) Issue(ctx context.Context, repo repository.VerificationRepository, email string, purpose domain.VerificationPurpose, tmpl MessageTemplate) (*domain.Verification, error) {
	if err := repo.DeleteByEmail(ctx, email); err != nil {
		return nil, err
	}

	code, err := generateCode(s.cfg.CodeLength)
	if err != nil {
		return nil, err
	}

	v := &domain.Verification{
		Email:     email,
		Purpose:   purpose,
		Passcode:  code,
		Tries:     0,
		ExpiresAt: s.now().Add(s.cfg.CodeTTL()),
	}
	if err := repo.Create(ctx, v); err != nil {
		return nil, err
	}

	subject, body := tmpl(v.Passcode, v.ExpiresAt)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		s.logger.Warn("verification email dispatch failed",
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
	}
	return v, nil
}

const codeAlphabet = "0123456789"

// generateCode draws a fixed-length code uniformly from the alphabet
// using crypto/rand.
func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
