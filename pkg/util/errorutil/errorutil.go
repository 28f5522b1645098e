package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewBadRequest(message string) error {
	return NewDomainError("BAD_REQUEST", message, http.StatusBadRequest, nil)
}

// NewLocked reports an account locked out after repeated failed logins.
func NewLocked(message string) error {
	return NewDomainError("ACCOUNT_LOCKED", message, http.StatusBadRequest, nil)
}

// NewEmailUnverified reports a login attempt before email verification.
func NewEmailUnverified(message string) error {
	return NewDomainError("EMAIL_UNVERIFIED", message, http.StatusBadRequest, nil)
}

// NewCodeExhausted reports a one-time code destroyed after too many wrong attempts.
func NewCodeExhausted(message string) error {
	return NewDomainError("CODE_ATTEMPTS_EXHAUSTED", message, http.StatusBadRequest, nil)
}

// NewCodeExpired reports a one-time code past its expiry.
func NewCodeExpired(message string) error {
	return NewDomainError("CODE_EXPIRED", message, http.StatusBadRequest, nil)
}

// NewInvalidCode reports a one-time code mismatch, carrying attempts remaining.
func NewInvalidCode(message string, attemptsLeft int) error {
	return NewDomainError("INVALID_CODE", message, http.StatusBadRequest, map[string]any{
		"attempts_left": attemptsLeft,
	})
}

// NewVerificationResent reports that no live code existed and a fresh one was issued.
func NewVerificationResent(message string) error {
	return NewDomainError("VERIFICATION_RESENT", message, http.StatusBadRequest, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
