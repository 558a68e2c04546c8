package middleware

import (
	"net/http"
	"strings"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/contextkeys"
	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/rbac"
)

// Authenticate verifies the Bearer token and stores the identity in the
// request context. A missing header is UNAUTHORIZED; a present but
// unverifiable token is INVALID_TOKEN.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.WriteAppError(w, apperr.Unauthorized("missing authorization header"))
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.WriteAppError(w, apperr.Unauthorized("authorization header must be a Bearer token"))
				return
			}

			id, err := tokens.Parse(token)
			if err != nil {
				httputil.WriteAppError(w, apperr.InvalidToken())
				return
			}

			next.ServeHTTP(w, r.WithContext(contextkeys.WithIdentity(r.Context(), id)))
		})
	}
}

// RequirePermission rejects requests whose identity lacks the permission.
// Must run after Authenticate.
func RequirePermission(perm rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := contextkeys.GetIdentity(r.Context())
			if !ok {
				httputil.WriteAppError(w, apperr.Unauthorized("authentication required"))
				return
			}
			if !rbac.HasPermission(id.Role, perm) {
				httputil.WriteAppError(w, apperr.Forbidden("missing permission "+string(perm)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
