package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campaign-service/internal/api/dto"
	"github.com/spec-kit/campaign-service/internal/auth"
	"github.com/spec-kit/campaign-service/internal/service"
	apperrors "github.com/spec-kit/campaign-service/pkg/util/errorutil"
)

// signatureHeader carries the gateway's HMAC of the webhook body.
const signatureHeader = "x-paystack-signature"

// PaymentsHandler exposes payment initiation and reconciliation endpoints.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(paymentService *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: paymentService}
}

// Initiate handles POST /payments/initiate.
func (h *PaymentsHandler) Initiate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}

	var req dto.InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CampaignID == "" || req.Amount <= 0 {
		return apperrors.NewValidationError("campaign_id and a positive amount required", nil)
	}

	authorizationURL, reference, err := h.payments.InitiatePayment(c.UserContext(), principal.User.ID, req.CampaignID, req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.InitiatePaymentResponse{
			AuthorizationURL: authorizationURL,
			Reference:        reference,
		},
	})
}

// Callback handles GET /payments/callback?reference=...
func (h *PaymentsHandler) Callback(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return apperrors.NewValidationError("reference required", nil)
	}

	message, err := h.payments.HandleCallback(c.UserContext(), reference)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.CallbackResponse{Message: message, Reference: reference},
	})
}

// Webhook handles POST /payments/webhook. The signature is verified over
// the raw body bytes exactly as received; decoding happens afterwards,
// inside the service.
func (h *PaymentsHandler) Webhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get(signatureHeader)

	if err := h.payments.HandleWebhook(c.UserContext(), rawBody, signature); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
