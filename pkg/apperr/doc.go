// Package apperr defines the application error taxonomy shared by services
// and the HTTP layer.
//
// Services return *apperr.Error values for business-rule failures; the API
// layer maps them onto the standard response envelope. Anything that is not
// an *apperr.Error is treated as an internal error and reported with a
// generic message so storage or library failures never leak details to
// clients.
package apperr
