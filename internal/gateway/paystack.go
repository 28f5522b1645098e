package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/campaign-service/internal/config"
)

// PaymentGateway is the external collaborator that authorizes charges and
// reports their outcome.
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, minorAmount int64, currency, reference string) (authorizationURL string, err error)
	Verify(ctx context.Context, reference string) (bool, error)
	VerifySignature(rawBody []byte, signature string) bool
}

// PaystackClient talks to the Paystack REST API.
type PaystackClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewPaystackClient builds a client from configuration.
func NewPaystackClient(cfg config.PaystackConfig) *PaystackClient {
	return &PaystackClient{
		secretKey: cfg.SecretKey,
		baseURL:   cfg.BaseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Email     string         `json:"email"`
	Amount    int64          `json:"amount"`
	Currency  string         `json:"currency"`
	Reference string         `json:"reference"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status string `json:"status"`
	} `json:"data"`
}

// Initialize starts a transaction and returns the redirect URL. Amount is
// in the gateway's minor units.
func (c *PaystackClient) Initialize(ctx context.Context, email string, minorAmount int64, currency, reference string) (string, error) {
	payload := initializeRequest{
		Email:     email,
		Amount:    minorAmount,
		Currency:  currency,
		Reference: reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paystack initialize: unexpected status %d", resp.StatusCode)
	}

	var parsed initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Data.AuthorizationURL == "" {
		return "", fmt.Errorf("paystack initialize: missing authorization url")
	}
	return parsed.Data.AuthorizationURL, nil
}

// Verify asks the gateway, server-to-server, whether the charge succeeded.
// Webhook bodies are never trusted on their own.
func (c *PaystackClient) Verify(ctx context.Context, reference string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("paystack verify: unexpected status %d", resp.StatusCode)
	}

	var parsed verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, err
	}
	return parsed.Data.Status == "success", nil
}

// Signature computes the hex HMAC-SHA512 of the raw body with the secret key.
func (c *PaystackClient) Signature(rawBody []byte) string {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature against the exact raw body
// bytes using a constant-time comparison.
func (c *PaystackClient) VerifySignature(rawBody []byte, signature string) bool {
	expected := c.Signature(rawBody)
	return hmac.Equal([]byte(expected), []byte(signature))
}
