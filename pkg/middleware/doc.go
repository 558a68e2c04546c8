// Package middleware provides the HTTP middleware chain: request IDs,
// metrics, panic recovery, token authentication, permission guards, and
// Redis-backed rate limiting for the public auth routes.
package middleware
