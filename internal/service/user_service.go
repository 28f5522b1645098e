package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/campaign-service/internal/auth"
	"github.com/spec-kit/campaign-service/internal/cache"
	"github.com/spec-kit/campaign-service/internal/config"
	"github.com/spec-kit/campaign-service/internal/domain"
	"github.com/spec-kit/campaign-service/internal/events"
	"github.com/spec-kit/campaign-service/internal/repository"
	apperrors "github.com/spec-kit/campaign-service/pkg/util/errorutil"
)

// UserService coordinates the credential lifecycle: registration, email
// verification, password reset, login and lockout.
type UserService struct {
	tx            repository.Transactor
	cache         *cache.UserCache
	verifications *VerificationService
	hasher        auth.PasswordHasher
	tokens        auth.TokenIssuer
	dispatcher    events.Dispatcher
	logger        *zap.Logger

	passwordRetries     int
	verificationRetries int
	now                 func() time.Time
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Transactor    repository.Transactor
	Cache         *cache.UserCache
	Verifications *VerificationService
	Hasher        auth.PasswordHasher
	Tokens        auth.TokenIssuer
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		tx:                  deps.Transactor,
		cache:               deps.Cache,
		verifications:       deps.Verifications,
		hasher:              deps.Hasher,
		tokens:              deps.Tokens,
		dispatcher:          deps.Dispatcher,
		logger:              deps.Logger,
		passwordRetries:     cfg.Auth.PasswordRetries,
		verificationRetries: cfg.Verification.MaxRetries,
		now:                 time.Now,
	}
}

// Register creates an unverified account and issues its first
// verification code. The registration race between two concurrent
// attempts for the same email is decided by the unique constraint on
// users.email, not by the pre-check.
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, *domain.Verification, error) {
	if !validEmail(email) {
		return nil, nil, apperrors.NewValidationError("Invalid email format", nil)
	}

	var (
		user         *domain.User
		verification *domain.Verification
	)
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		if _, err := r.Users.GetByEmail(ctx, email); err == nil {
			return apperrors.NewConflict("Email already exists", nil)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}

		user = &domain.User{
			Email:         email,
			PasswordHash:  hash,
			EmailStatus:   domain.EmailStatusUnverified,
			AccountStatus: domain.AccountStatusActive,
		}
		if err := r.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict("Email already exists", nil)
			}
			return err
		}

		verification, err = s.verifications.Issue(ctx, r.Verifications, user.Email, domain.PurposeRegistration, RegistrationMessage)
		return err
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.cache.Set(ctx, user)
	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{Email: user.Email})
	return user, verification, nil
}

// VerifyEmail consumes a registration code and marks the email verified.
func (s *UserService) VerifyEmail(ctx context.Context, email, passcode string) (*domain.User, string, error) {
	var (
		user    *domain.User
		failErr error
	)
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		// Cache-first lookup for the pre-checks; the store stays
		// authoritative for the mutation below.
		known := s.cache.Get(ctx, email)
		if known == nil {
			stored, err := r.Users.GetByEmail(ctx, email)
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("User", nil)
			}
			if err != nil {
				return err
			}
			s.cache.Set(ctx, stored)
			known = stored
		}
		if known.EmailStatus == domain.EmailStatusVerified {
			return apperrors.NewConflict("Email already verified", nil)
		}

		fail, err := s.consumeCode(ctx, r, email, passcode, domain.PurposeRegistration, RegistrationMessage,
			"No verification found. A new one has been sent. Check your email.")
		if err != nil {
			return err
		}
		if fail != nil {
			// Commit so the tries counter and any re-issued code survive
			// the failed attempt.
			failErr = fail
			return nil
		}

		stored, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}
		stored.EmailStatus = domain.EmailStatusVerified
		if err := r.Users.Update(ctx, stored); err != nil {
			return err
		}
		user = stored
		return nil
	})
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	if failErr != nil {
		return nil, "", failErr
	}

	s.cache.Set(ctx, user)
	s.publish(ctx, events.EventEmailVerified, user.ID, events.EmailVerifiedPayload{Email: user.Email})
	return user, "Email verified successfully", nil
}

// ForgotPassword issues a password-reset code. No account state changes
// until the code is consumed.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (*domain.User, *domain.Verification, error) {
	var (
		user         *domain.User
		verification *domain.Verification
	)
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		stored, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}
		if stored.AccountStatus == domain.AccountStatusDeleted {
			return apperrors.NewConflict("Account does not exist", nil)
		}
		user = stored
		verification, err = s.verifications.Issue(ctx, r.Verifications, stored.Email, domain.PurposePasswordReset, PasswordResetMessage)
		return err
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return user, verification, nil
}

// ResetPassword consumes a reset code, replaces the password hash and
// clears a lockout.
func (s *UserService) ResetPassword(ctx context.Context, email, passcode, newPassword string) (*domain.User, string, error) {
	var (
		user    *domain.User
		failErr error
	)
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		stored, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}

		fail, err := s.consumeCode(ctx, r, email, passcode, domain.PurposePasswordReset, PasswordResetMessage,
			"No password reset code found. A new one has been sent. Check your email.")
		if err != nil {
			return err
		}
		if fail != nil {
			failErr = fail
			return nil
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		stored.PasswordHash = hash
		stored.AccountStatus = domain.AccountStatusActive
		stored.FailedAttempts = 0
		if err := r.Users.Update(ctx, stored); err != nil {
			return err
		}
		user = stored
		return nil
	})
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	if failErr != nil {
		return nil, "", failErr
	}

	s.cache.Set(ctx, user)
	return user, "Password reset successfully", nil
}

// Login authenticates the user and returns a signed access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if !validEmail(email) {
		return nil, "", time.Time{}, apperrors.NewValidationError("Invalid email format", nil)
	}

	var (
		user    *domain.User
		failErr error
	)
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		stored, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}
		if stored.AccountStatus == domain.AccountStatusDeleted {
			return apperrors.NewConflict("Account does not exist", nil)
		}
		if stored.EmailStatus == domain.EmailStatusUnverified {
			return apperrors.NewEmailUnverified("Email not verified. Please, verify your email.")
		}
		if stored.AccountStatus == domain.AccountStatusLocked {
			return apperrors.NewLocked("Account is locked. Kindly reset your password.")
		}

		if err := s.hasher.Compare(stored.PasswordHash, password); err != nil {
			fail, ferr := s.recordFailedAttempt(ctx, r, stored)
			if ferr != nil {
				return ferr
			}
			// Commit the failure counter despite the failed login.
			failErr = fail
			return nil
		}

		now := s.now()
		stored.LastLogin = &now
		if err := r.Users.Update(ctx, stored); err != nil {
			return err
		}
		user = stored
		return nil
	})
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if failErr != nil {
		return nil, "", time.Time{}, failErr
	}

	token, expiresAt, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	s.cache.Set(ctx, user)
	return user, token, expiresAt, nil
}

// ValidateCredentials verifies an email/password pair, applying the
// shared failure path (attempt counting and lockout) on mismatch.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	var (
		user    *domain.User
		failErr error
	)
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		stored, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}
		if err := s.hasher.Compare(stored.PasswordHash, password); err != nil {
			fail, ferr := s.recordFailedAttempt(ctx, r, stored)
			if ferr != nil {
				return ferr
			}
			failErr = fail
			return nil
		}
		user = stored
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if failErr != nil {
		return nil, failErr
	}
	return user, nil
}

// ChangePassword replaces the hash after verifying the current password.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*domain.User, string, error) {
	var user *domain.User
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		stored, err := r.Users.GetByID(ctx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}
		if err := s.hasher.Compare(stored.PasswordHash, oldPassword); err != nil {
			return apperrors.NewBadRequest("Incorrect password")
		}
		if oldPassword == newPassword {
			return apperrors.NewBadRequest("New password must be different from the old password")
		}
		if stored.AccountStatus == domain.AccountStatusLocked {
			return apperrors.NewLocked("Account is locked. Kindly reset your password.")
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		stored.PasswordHash = hash
		if err := r.Users.Update(ctx, stored); err != nil {
			return err
		}
		user = stored
		return nil
	})
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}

	s.cache.Set(ctx, user)
	return user, "Password changed successfully", nil
}

// GetUserByID fetches a user for profile display.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		stored, err := r.Users.GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}
		user = stored
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Logout is a no-op for stateless bearer tokens; the client discards the
// token.
func (s *UserService) Logout(_ context.Context, _ string) error {
	return nil
}

// recordFailedAttempt is the shared failure path: it increments the
// counter, locks the account once the threshold is reached, and returns
// the classified error the caller must surface after committing.
func (s *UserService) recordFailedAttempt(ctx context.Context, r repository.Repos, user *domain.User) (failErr error, err error) {
	user.FailedAttempts++
	if user.FailedAttempts >= s.passwordRetries {
		user.AccountStatus = domain.AccountStatusLocked
		if err := r.Users.Update(ctx, user); err != nil {
			return nil, err
		}
		s.publish(ctx, events.EventAccountLocked, user.ID, events.AccountLockedPayload{
			Email:          user.Email,
			FailedAttempts: user.FailedAttempts,
		})
		return apperrors.NewLocked("Maximum password attempts reached. Kindly reset your password."), nil
	}
	if err := r.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return apperrors.NewBadRequest("Incorrect password. Kindly reset your password."), nil
}

// consumeCode runs the shared one-time-code state machine. It returns a
// non-nil failErr for outcomes whose side effects (tries increment,
// re-issued code) must still commit, and err for failures that roll the
// transaction back. Both nil means the code was accepted and deleted.
func (s *UserService) consumeCode(ctx context.Context, r repository.Repos, email, passcode string, purpose domain.VerificationPurpose, tmpl MessageTemplate, resentMessage string) (failErr error, err error) {
	v, err := r.Verifications.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := s.verifications.Issue(ctx, r.Verifications, email, purpose, tmpl); err != nil {
			return nil, err
		}
		return apperrors.NewVerificationResent(resentMessage), nil
	}
	if err != nil {
		return nil, err
	}

	if v.Passcode != passcode {
		tries := v.Tries + 1
		if err := r.Verifications.UpdateTries(ctx, v.ID, tries); err != nil {
			return nil, err
		}
		if tries >= s.verificationRetries {
			if err := r.Verifications.Delete(ctx, v.ID); err != nil {
				return nil, err
			}
			if _, err := s.verifications.Issue(ctx, r.Verifications, email, purpose, tmpl); err != nil {
				return nil, err
			}
			return apperrors.NewCodeExhausted("Maximum verification attempts reached. A new code has been generated and sent. Check your email."), nil
		}
		attemptsLeft := s.verificationRetries - tries
		return apperrors.NewInvalidCode(fmt.Sprintf("Invalid verification code. Attempts left: %d.", attemptsLeft), attemptsLeft), nil
	}

	if v.Expired(s.now()) {
		if err := r.Verifications.Delete(ctx, v.ID); err != nil {
			return nil, err
		}
		if _, err := s.verifications.Issue(ctx, r.Verifications, email, purpose, tmpl); err != nil {
			return nil, err
		}
		return apperrors.NewCodeExpired("Verification code has expired. A new one has been sent. Check your email."), nil
	}

	if err := r.Verifications.Delete(ctx, v.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
