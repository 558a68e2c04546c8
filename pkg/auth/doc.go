// Package auth handles tokens, passwords, and request identity.
//
// Tokens are stateless HMAC-signed JWTs carrying the user's id, role, and
// tenant. There is no server-side session: switching churches mints a new
// token with the churchId claim substituted, which is the only way tenant
// context ever changes.
//
// Identity is the immutable, request-scoped view of a verified token. It is
// constructed once by the authentication middleware and passed explicitly to
// services and authorization predicates.
package auth
