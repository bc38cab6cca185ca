package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("ENR_001", "invalid transition", http.StatusBadRequest)
	assert.Equal(t, "[ENR_001] invalid transition", e.Error())
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	e := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, inner)
	assert.Contains(t, e.Error(), "SYS_001")
	assert.Contains(t, e.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	e := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)
	assert.ErrorIs(t, e, inner)
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"validation", Validation("bad field"), "VAL_001", http.StatusBadRequest},
		{"progress required", ErrProgressRequired(), "VAL_002", http.StatusBadRequest},
		{"progress NaN", ErrProgressNotANumber(), "VAL_003", http.StatusBadRequest},
		{"invalid transition", ErrInvalidTransition("no"), "ENR_001", http.StatusBadRequest},
		{"business rule", ErrBusinessRule("no"), "ENR_002", http.StatusBadRequest},
		{"invalid status", ErrInvalidStatus("archived"), "ENR_003", http.StatusBadRequest},
		{"not found", ErrNotFound("Enrollment"), "ENR_404", http.StatusNotFound},
		{"invalid token", ErrInvalidToken(), "AUTH_001", http.StatusUnauthorized},
		{"forbidden", ErrForbidden(), "AUTH_002", http.StatusForbidden},
		{"rate limited", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"internal", InternalError(errors.New("x")), "SYS_001", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrProgressRequired_MessageIsContract(t *testing.T) {
	// The UI matches this message verbatim.
	assert.Equal(t, "Progress is required", ErrProgressRequired().Message)
}

func TestErrNotFound_Message(t *testing.T) {
	assert.Equal(t, "Enrollment not found", ErrNotFound("Enrollment").Message)
}
