package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campaign-service/internal/config"
)

func newTestClient(baseURL string) *PaystackClient {
	return NewPaystackClient(config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   baseURL,
		Currency:  "USD",
	})
}

func TestInitialize(t *testing.T) {
	var got initializeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/xyz"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	url, err := client.Initialize(context.Background(), "donor@example.com", 25000, "USD", "REF_1_1")
	require.NoError(t, err)
	require.Equal(t, "https://checkout.paystack.com/xyz", url)
	require.Equal(t, "donor@example.com", got.Email)
	require.Equal(t, int64(25000), got.Amount)
	require.Equal(t, "REF_1_1", got.Reference)
}

func TestInitializeNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Initialize(context.Background(), "donor@example.com", 25000, "USD", "REF_1_1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 401")
}

func TestVerify(t *testing.T) {
	status := "success"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/transaction/verify/REF_1_1", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": status},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ok, err := client.Verify(context.Background(), "REF_1_1")
	require.NoError(t, err)
	require.True(t, ok)

	status = "abandoned"
	ok, err = client.Verify(context.Background(), "REF_1_1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifySignature(t *testing.T) {
	client := newTestClient("http://unused")
	body := []byte(`{"event":"charge.success","data":{"reference":"REF_1_1"}}`)

	signature := client.Signature(body)
	require.True(t, client.VerifySignature(body, signature))

	// Any change to the body or the signature must fail verification.
	tampered := []byte(`{"event":"charge.success","data":{"reference":"REF_1_2"}}`)
	require.False(t, client.VerifySignature(tampered, signature))
	flipped := "0"
	if signature[len(signature)-1] == '0' {
		flipped = "1"
	}
	require.False(t, client.VerifySignature(body, signature[:len(signature)-1]+flipped))
	require.False(t, client.VerifySignature(body, ""))

	other := NewPaystackClient(config.PaystackConfig{SecretKey: "sk_other", BaseURL: "http://unused"})
	require.False(t, client.VerifySignature(body, other.Signature(body)))
}
