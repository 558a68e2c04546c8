// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the application are defined here. This
// prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import (
	"context"

	"github.com/shepherdhq/shepherd/pkg/auth"
)

// Key is the type for context keys to prevent collisions.
type Key string

const (
	// IdentityKey contains auth.Identity.
	// Set by: middleware.Authenticate after token verification.
	// Required by: all protected endpoints and authorization predicates.
	IdentityKey Key = "identity"

	// RequestIDKey contains the request ID string.
	// Set by: middleware.RequestID.
	// Used by: logger, error responses.
	RequestIDKey Key = "request_id"
)

// WithIdentity adds the verified identity to the context.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentity retrieves the verified identity from the context. The boolean
// is false when the request was not authenticated.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(auth.Identity)
	return id, ok
}

// WithRequestID adds the request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
