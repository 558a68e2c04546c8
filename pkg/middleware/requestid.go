package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shepherdhq/shepherd/pkg/contextkeys"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns every request an id, honoring one supplied by an
// upstream proxy, and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(contextkeys.WithRequestID(r.Context(), requestID)))
	})
}
