package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Request Shape (VAL) ----

// Validation returns a request-shape error surfaced verbatim to the client.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrProgressRequired() *AppError {
	return New("VAL_002", "Progress is required", http.StatusBadRequest)
}

func ErrProgressNotANumber() *AppError {
	return New("VAL_003", "Progress must be a number", http.StatusBadRequest)
}

// ---- Enrollment Lifecycle (ENR) ----

// ErrInvalidTransition wraps a transition-guard rejection. The message
// carries the rejected pair and the literal allowed-set.
func ErrInvalidTransition(message string) *AppError {
	return New("ENR_001", message, http.StatusBadRequest)
}

// ErrBusinessRule wraps a cross-field business-rule rejection tied to
// the target status.
func ErrBusinessRule(message string) *AppError {
	return New("ENR_002", message, http.StatusBadRequest)
}

func ErrInvalidStatus(status string) *AppError {
	return New("ENR_003", fmt.Sprintf("%q is not a valid enrollment status", status), http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("ENR_404", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Insufficient privileges", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
