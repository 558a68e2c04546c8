package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"

	// Auth-specific codes. Raised by the auth service, mapped to HTTP
	// status by the route layer.
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeChurchNotFound     = "CHURCH_NOT_FOUND"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeRateLimited        = "RATE_LIMITED"
)

// Error is a typed application error carrying a stable code, the HTTP status
// it maps to, and optional per-field details.
type Error struct {
	Code    string            `json:"code"`
	Status  int               `json:"-"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails attaches field-level details and returns the error.
func (e *Error) WithDetails(details map[string]string) *Error {
	e.Details = details
	return e
}

// New creates an error with an explicit code and status.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Validation creates a 400 VALIDATION_ERROR.
func Validation(message string) *Error {
	return New(CodeValidation, http.StatusBadRequest, message)
}

// Validationf creates a 400 VALIDATION_ERROR with a formatted message.
func Validationf(format string, args ...interface{}) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Unauthorized creates a 401 UNAUTHORIZED.
func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, message)
}

// Forbidden creates a 403 FORBIDDEN.
func Forbidden(message string) *Error {
	return New(CodeForbidden, http.StatusForbidden, message)
}

// NotFound creates a 404 NOT_FOUND.
func NotFound(message string) *Error {
	return New(CodeNotFound, http.StatusNotFound, message)
}

// NotFoundf creates a 404 NOT_FOUND with a formatted message.
func NotFoundf(format string, args ...interface{}) *Error {
	return NotFound(fmt.Sprintf(format, args...))
}

// Conflict creates a 409 CONFLICT.
func Conflict(message string) *Error {
	return New(CodeConflict, http.StatusConflict, message)
}

// Internal wraps an unexpected error as a 500 INTERNAL_ERROR. The original
// error is kept as the cause for logging but never serialized.
func Internal(err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		cause:   err,
	}
}

// InvalidCredentials is returned on login with a bad email/password pair.
func InvalidCredentials() *Error {
	return New(CodeInvalidCredentials, http.StatusUnauthorized, "invalid email or password")
}

// EmailExists is returned when registration would duplicate an email.
func EmailExists(email string) *Error {
	return New(CodeEmailExists, http.StatusConflict, "email already registered").
		WithDetails(map[string]string{"email": email})
}

// AccountDisabled is returned on login against a deactivated account.
func AccountDisabled() *Error {
	return New(CodeAccountDisabled, http.StatusBadRequest, "account is disabled")
}

// ChurchNotFound is returned when a referenced church does not exist.
func ChurchNotFound(churchID string) *Error {
	return New(CodeChurchNotFound, http.StatusBadRequest, "church not found").
		WithDetails(map[string]string{"churchId": churchID})
}

// InvalidToken is returned for malformed, expired, or tampered tokens.
func InvalidToken() *Error {
	return New(CodeInvalidToken, http.StatusUnauthorized, "invalid or expired token")
}

// RateLimited is returned when a client exceeds its request budget on a
// rate-limited route.
func RateLimited() *Error {
	return New(CodeRateLimited, http.StatusTooManyRequests, "too many requests")
}

// From converts any error into an *Error. Unknown errors become internal
// errors so callers always have a code and status to render.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Cause returns the wrapped cause, if any. Used by the HTTP layer when
// logging internal errors.
func (e *Error) Cause() error {
	return e.cause
}
