package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/campaign-service/internal/config"
	"github.com/spec-kit/campaign-service/internal/domain"
	"github.com/spec-kit/campaign-service/internal/events"
)

func newTestPaymentService(store *memStore, gw *fakeGateway) (*PaymentService, events.Dispatcher) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewPaymentService(config.PaystackConfig{Currency: "USD"}, PaymentDependencies{
		Transactor: &memTransactor{store: store},
		Gateway:    gw,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return svc, dispatcher
}

func seedUserAndCampaign(store *memStore, amount float64) (userID, campaignID string) {
	repos := store.repos()
	user := &domain.User{
		Email:         "donor@example.com",
		PasswordHash:  "x",
		EmailStatus:   domain.EmailStatusVerified,
		AccountStatus: domain.AccountStatusActive,
	}
	_ = repos.Users.Create(context.Background(), user)

	campaign := &domain.Campaign{
		ID:     "campaign-1",
		Title:  "Spring launch",
		Amount: amount,
		Status: domain.CampaignStatusPending,
	}
	store.campaigns[campaign.ID] = campaign
	return user.ID, campaign.ID
}

func TestInitiatePaymentCreatesPendingRecord(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{authURL: "https://checkout.example.com/abc"}
	svc, _ := newTestPaymentService(store, gw)

	userID, campaignID := seedUserAndCampaign(store, 250.00)

	authURL, reference, err := svc.InitiatePayment(context.Background(), userID, campaignID, 250.00)
	require.NoError(t, err)
	require.Equal(t, "https://checkout.example.com/abc", authURL)
	require.True(t, strings.HasPrefix(reference, "REF_"))
	require.Equal(t, 1, gw.initCalls)

	payment, err := store.repos().Payments.GetByReference(context.Background(), reference)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusPending, payment.Status)
	require.Equal(t, 250.00, payment.Amount)
	require.Equal(t, "USD", payment.Currency)
	require.Equal(t, int64(25000), payment.MinorUnits())
}

func TestInitiatePaymentRejectsAmountMismatch(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{}
	svc, _ := newTestPaymentService(store, gw)

	userID, campaignID := seedUserAndCampaign(store, 250.00)

	_, _, err := svc.InitiatePayment(context.Background(), userID, campaignID, 249.99)
	require.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	require.Contains(t, err.Error(), "Amount mismatch")
	require.Zero(t, gw.initCalls)
}

func TestInitiatePaymentUnknownCampaign(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestPaymentService(store, &fakeGateway{})

	userID, _ := seedUserAndCampaign(store, 250.00)

	_, _, err := svc.InitiatePayment(context.Background(), userID, "missing", 250.00)
	require.Equal(t, "NOT_FOUND", errCode(t, err))
}

func seedPendingPayment(store *memStore, reference string) *domain.Payment {
	userID, campaignID := seedUserAndCampaign(store, 250.00)
	payment := &domain.Payment{
		Reference:  reference,
		CampaignID: campaignID,
		UserID:     userID,
		Amount:     250.00,
		Currency:   "USD",
		Status:     domain.PaymentStatusPending,
	}
	_ = store.repos().Payments.Create(context.Background(), payment)
	return payment
}

func TestMarkPaymentAsSuccessIsIdempotent(t *testing.T) {
	store := newMemStore()
	svc, dispatcher := newTestPaymentService(store, &fakeGateway{})
	payment := seedPendingPayment(store, "REF_1_1")

	var published []events.Event
	dispatcher.Subscribe(events.EventPaymentSucceeded, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	require.NoError(t, svc.MarkPaymentAsSuccess(context.Background(), "REF_1_1"))

	stored, err := store.repos().Payments.GetByReference(context.Background(), "REF_1_1")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusSuccess, stored.Status)

	campaign, err := store.repos().Campaigns.GetByID(context.Background(), payment.CampaignID)
	require.NoError(t, err)
	require.Equal(t, domain.CampaignStatusPaid, campaign.Status)

	// Redelivery: no further writes, no further events.
	require.NoError(t, svc.MarkPaymentAsSuccess(context.Background(), "REF_1_1"))
	require.Equal(t, 1, store.paymentStatusWrites)
	require.Equal(t, 1, store.campaignStatusWrites)
	require.Len(t, published, 1)
	require.Equal(t, payment.UserID, published[0].SubjectID)
}

func TestMarkPaymentAsSuccessUnknownReference(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestPaymentService(store, &fakeGateway{})

	err := svc.MarkPaymentAsSuccess(context.Background(), "REF_UNKNOWN")
	require.Equal(t, "NOT_FOUND", errCode(t, err))
}

func webhookBody(t *testing.T, event, reference string) []byte {
	t.Helper()
	var payload WebhookPayload
	payload.Event = event
	payload.Data.Reference = reference
	payload.Data.Status = "success"
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

func TestHandleWebhookRejectsBadSignatureBeforeAnythingElse(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{sigValid: false, verifyResult: true}
	svc, _ := newTestPaymentService(store, gw)
	seedPendingPayment(store, "REF_1_1")

	err := svc.HandleWebhook(context.Background(), webhookBody(t, "charge.success", "REF_1_1"), "forged")
	require.Equal(t, "UNAUTHORIZED", errCode(t, err))
	require.Zero(t, gw.verifyCalls)
	require.Zero(t, store.paymentStatusWrites)
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{sigValid: true, verifyResult: true}
	svc, _ := newTestPaymentService(store, gw)
	seedPendingPayment(store, "REF_1_1")

	err := svc.HandleWebhook(context.Background(), webhookBody(t, "charge.failed", "REF_1_1"), "ok")
	require.NoError(t, err)
	require.Zero(t, gw.verifyCalls)
	require.Zero(t, store.paymentStatusWrites)
}

func TestHandleWebhookVerifiesThenSettles(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{sigValid: true, verifyResult: true}
	svc, _ := newTestPaymentService(store, gw)
	seedPendingPayment(store, "REF_1_1")

	err := svc.HandleWebhook(context.Background(), webhookBody(t, "charge.success", "REF_1_1"), "ok")
	require.NoError(t, err)
	require.Equal(t, 1, gw.verifyCalls)

	stored, err := store.repos().Payments.GetByReference(context.Background(), "REF_1_1")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusSuccess, stored.Status)
}

func TestHandleWebhookUnverifiedChargeIsDropped(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{sigValid: true, verifyResult: false}
	svc, _ := newTestPaymentService(store, gw)
	seedPendingPayment(store, "REF_1_1")

	err := svc.HandleWebhook(context.Background(), webhookBody(t, "charge.success", "REF_1_1"), "ok")
	require.NoError(t, err)
	require.Zero(t, store.paymentStatusWrites)
}

func TestHandleWebhookMalformedBody(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{sigValid: true}
	svc, _ := newTestPaymentService(store, gw)

	err := svc.HandleWebhook(context.Background(), []byte("{not json"), "ok")
	require.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestHandleCallback(t *testing.T) {
	store := newMemStore()
	gw := &fakeGateway{verifyResult: true}
	svc, _ := newTestPaymentService(store, gw)
	seedPendingPayment(store, "REF_1_1")

	msg, err := svc.HandleCallback(context.Background(), "REF_1_1")
	require.NoError(t, err)
	require.Equal(t, "Payment verified successfully.", msg)

	gw.verifyResult = false
	msg, err = svc.HandleCallback(context.Background(), "REF_1_1")
	require.NoError(t, err)
	require.Equal(t, "Payment verification failed.", msg)
}
