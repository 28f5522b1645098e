package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/campaign-service/internal/config"
	"github.com/spec-kit/campaign-service/internal/domain"
	"github.com/spec-kit/campaign-service/internal/events"
	"github.com/spec-kit/campaign-service/internal/gateway"
	"github.com/spec-kit/campaign-service/internal/repository"
	apperrors "github.com/spec-kit/campaign-service/pkg/util/errorutil"
)

// chargeSuccessEvent is the only gateway event that advances payment state.
const chargeSuccessEvent = "charge.success"

// WebhookPayload is the decoded shape of a gateway webhook body.
type WebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// PaymentService initiates payment attempts and reconciles gateway
// events into payment records, at most once per reference.
type PaymentService struct {
	tx         repository.Transactor
	gateway    gateway.PaymentGateway
	dispatcher events.Dispatcher
	logger     *zap.Logger
	currency   string
	now        func() time.Time
}

// PaymentDependencies bundles collaborators for the payment service.
type PaymentDependencies struct {
	Transactor repository.Transactor
	Gateway    gateway.PaymentGateway
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewPaymentService builds the service.
func NewPaymentService(cfg config.PaystackConfig, deps PaymentDependencies) *PaymentService {
	return &PaymentService{
		tx:         deps.Transactor,
		gateway:    deps.Gateway,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		currency:   cfg.Currency,
		now:        time.Now,
	}
}

// InitiatePayment creates a pending payment record and asks the gateway
// for a redirect URL. A gateway failure rolls the record back.
func (s *PaymentService) InitiatePayment(ctx context.Context, userID, campaignID string, amount float64) (authorizationURL, reference string, err error) {
	err = s.tx.InTx(ctx, func(r repository.Repos) error {
		user, err := r.Users.GetByID(ctx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User", nil)
		}
		if err != nil {
			return err
		}

		campaign, err := r.Campaigns.GetByID(ctx, campaignID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Campaign", nil)
		}
		if err != nil {
			return err
		}
		if campaign.Amount != amount {
			return apperrors.NewValidationError("Amount mismatch", nil)
		}

		// Uniqueness is guaranteed by the payments.reference constraint;
		// the generated value only needs to be collision-unlikely.
		reference = newReference(s.now())
		payment := &domain.Payment{
			Reference:  reference,
			CampaignID: campaign.ID,
			UserID:     user.ID,
			Amount:     campaign.Amount,
			Currency:   s.currency,
			Status:     domain.PaymentStatusPending,
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict("Payment reference already exists", nil)
			}
			return err
		}

		authorizationURL, err = s.gateway.Initialize(ctx, user.Email, payment.MinorUnits(), payment.Currency, reference)
		return err
	})
	if err != nil {
		return "", "", apperrors.MapError(err)
	}
	return authorizationURL, reference, nil
}

// HandleWebhook processes a signed gateway notification. The signature
// is recomputed over the exact raw body bytes before anything else; the
// body's own status field is never trusted without a server-to-server
// verification.
func (s *PaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !s.gateway.VerifySignature(rawBody, signature) {
		return apperrors.NewUnauthorized("Invalid signature")
	}

	var payload WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return apperrors.NewValidationError("Malformed webhook payload", nil)
	}

	if payload.Event != chargeSuccessEvent {
		s.logger.Debug("ignoring webhook event", zap.String("event", payload.Event))
		return nil
	}

	verified, err := s.gateway.Verify(ctx, payload.Data.Reference)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !verified {
		s.logger.Warn("webhook charge not verified by gateway",
			zap.String("reference", payload.Data.Reference))
		return nil
	}
	return s.MarkPaymentAsSuccess(ctx, payload.Data.Reference)
}

// HandleCallback is the synchronous redirect variant of the webhook
// path. A failed verification is a normal outcome, not an error.
func (s *PaymentService) HandleCallback(ctx context.Context, reference string) (string, error) {
	verified, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if !verified {
		return "Payment verification failed.", nil
	}
	if err := s.MarkPaymentAsSuccess(ctx, reference); err != nil {
		return "", err
	}
	return "Payment verified successfully.", nil
}

// MarkPaymentAsSuccess applies the terminal transition exactly once.
// Repeat deliveries for the same reference commit with no writes.
func (s *PaymentService) MarkPaymentAsSuccess(ctx context.Context, reference string) error {
	var succeeded *domain.Payment
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		payment, err := r.Payments.GetByReference(ctx, reference)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Payment", nil)
		}
		if err != nil {
			return err
		}

		if payment.Status == domain.PaymentStatusSuccess {
			// Already settled: the at-most-once guarantee.
			return nil
		}

		if err := r.Payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusSuccess); err != nil {
			return err
		}
		if err := r.Campaigns.UpdateStatus(ctx, payment.CampaignID, domain.CampaignStatusPaid); err != nil {
			return err
		}
		payment.Status = domain.PaymentStatusSuccess
		succeeded = payment
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if succeeded != nil && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPaymentSucceeded,
			SubjectID: succeeded.UserID,
			Timestamp: s.now(),
			Payload: events.PaymentSucceededPayload{
				Reference:  succeeded.Reference,
				CampaignID: succeeded.CampaignID,
				UserID:     succeeded.UserID,
				Amount:     succeeded.Amount,
				Currency:   succeeded.Currency,
				Status:     succeeded.Status,
				NewStatus:  domain.CampaignStatusPaid,
			},
		})
	}
	return nil
}

func newReference(now time.Time) string {
	return fmt.Sprintf("REF_%d_%d", now.UnixMilli(), rand.Intn(10000))
}
