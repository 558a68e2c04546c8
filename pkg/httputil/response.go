package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/shepherdhq/shepherd/pkg/apperr"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool          `json:"success"`
	Data    interface{}   `json:"data,omitempty"`
	Error   *apperr.Error `json:"error,omitempty"`
}

// WriteJSON writes an arbitrary JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteData writes a success envelope with the given status code.
func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteSuccess writes a 200 success envelope.
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteData(w, http.StatusOK, data)
}

// WriteCreated writes a 201 success envelope.
func WriteCreated(w http.ResponseWriter, data interface{}) {
	WriteData(w, http.StatusCreated, data)
}

// WriteAppError writes an error envelope using the error's own status code.
func WriteAppError(w http.ResponseWriter, err *apperr.Error) {
	WriteJSON(w, err.Status, Envelope{Success: false, Error: err})
}

// WriteError converts any error to the envelope. Unknown errors render as
// INTERNAL_ERROR with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	WriteAppError(w, apperr.From(err))
}

// WriteValidationError writes a 400 VALIDATION_ERROR envelope.
func WriteValidationError(w http.ResponseWriter, message string) {
	WriteAppError(w, apperr.Validation(message))
}

// WriteUnauthorized writes a 401 UNAUTHORIZED envelope.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteAppError(w, apperr.Unauthorized(message))
}

// WriteForbidden writes a 403 FORBIDDEN envelope.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteAppError(w, apperr.Forbidden(message))
}

// WriteNotFound writes a 404 NOT_FOUND envelope.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteAppError(w, apperr.NotFound(message))
}
