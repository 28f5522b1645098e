package dto

// InitiatePaymentRequest payload for starting a payment attempt.
type InitiatePaymentRequest struct {
	CampaignID string  `json:"campaign_id"`
	Amount     float64 `json:"amount"`
}

// InitiatePaymentResponse returned after gateway initialization.
type InitiatePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// CallbackResponse returned to the user-redirect flow.
type CallbackResponse struct {
	Message   string `json:"message"`
	Reference string `json:"reference"`
}
