package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsMapToExpectedStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		code   string
		status int
	}{
		{"validation", Validation("bad input"), CodeValidation, http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"not found", NotFound("missing"), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("duplicate"), CodeConflict, http.StatusConflict},
		{"invalid credentials", InvalidCredentials(), CodeInvalidCredentials, http.StatusUnauthorized},
		{"email exists", EmailExists("a@x.com"), CodeEmailExists, http.StatusConflict},
		{"account disabled", AccountDisabled(), CodeAccountDisabled, http.StatusBadRequest},
		{"church not found", ChurchNotFound("c1"), CodeChurchNotFound, http.StatusBadRequest},
		{"invalid token", InvalidToken(), CodeInvalidToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestInternalKeepsCauseButHidesIt(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Internal(cause)

	assert.Equal(t, CodeInternal, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Cause())
}

func TestFrom(t *testing.T) {
	t.Run("passes through typed errors", func(t *testing.T) {
		original := Forbidden("insufficient permissions")
		got := From(fmt.Errorf("handler: %w", original))
		assert.Equal(t, original, got)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		got := From(errors.New("boom"))
		require.NotNil(t, got)
		assert.Equal(t, CodeInternal, got.Code)
	})
}

func TestEmailExistsCarriesDetail(t *testing.T) {
	err := EmailExists("a@x.com")
	require.NotNil(t, err.Details)
	assert.Equal(t, "a@x.com", err.Details["email"])
}
