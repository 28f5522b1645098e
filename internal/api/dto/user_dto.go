package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest payload for email verification.
type VerifyEmailRequest struct {
	Email    string `json:"email"`
	Passcode string `json:"passcode"`
}

// ForgotPasswordRequest payload for reset-code issuance.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload for code-based password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Passcode    string `json:"passcode"`
	NewPassword string `json:"new_password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for authenticated password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the sanitized user shape returned by the API.
type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	EmailStatus   string     `json:"email_status"`
	AccountStatus string     `json:"account_status"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}
