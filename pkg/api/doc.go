// Package api exposes the REST surface under /api/v1. Every response uses
// the {success, data?, error?} envelope. Handlers decode requests, resolve
// the tenant, and delegate to the domain services; authorization beyond the
// per-route permission guard lives in the services.
package api
