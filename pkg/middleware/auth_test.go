package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/contextkeys"
	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/rbac"
)

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-test-secret", time.Hour)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httputil.Envelope {
	t.Helper()
	var env httputil.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestAuthenticateStoresIdentity(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.Generate(auth.Identity{
		UserID: "u1", Email: "grace@example.com", Role: rbac.RolePastor, ChurchID: "c1",
	})
	require.NoError(t, err)

	var got auth.Identity
	handler := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := contextkeys.GetIdentity(r.Context())
		require.True(t, ok)
		got = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, rbac.RolePastor, got.Role)
	assert.Equal(t, "c1", got.ChurchID)
}

func TestAuthenticateRejections(t *testing.T) {
	tokens := testTokens()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	handler := Authenticate(tokens)(next)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", apperr.CodeUnauthorized},
		{"not a bearer token", "Basic dXNlcjpwYXNz", apperr.CodeUnauthorized},
		{"garbage token", "Bearer not.a.token", apperr.CodeInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	expired := auth.NewTokenManager("test-secret-test-secret", -time.Hour)
	token, err := expired.Generate(auth.Identity{UserID: "u1", Role: rbac.RoleMember, ChurchID: "c1"})
	require.NoError(t, err)

	handler := Authenticate(testTokens())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperr.CodeInvalidToken, decodeEnvelope(t, rec).Error.Code)
}

func TestRequirePermission(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequirePermission(rbac.PermUserCreate)(next)

	// Pastor holds user:create.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	req = req.WithContext(contextkeys.WithIdentity(req.Context(), auth.Identity{
		UserID: "p1", Role: rbac.RolePastor, ChurchID: "c1",
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Member does not.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	req = req.WithContext(contextkeys.WithIdentity(req.Context(), auth.Identity{
		UserID: "m1", Role: rbac.RoleMember, ChurchID: "c1",
	}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperr.CodeForbidden, decodeEnvelope(t, rec).Error.Code)

	// Unauthenticated request never reaches the handler.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
