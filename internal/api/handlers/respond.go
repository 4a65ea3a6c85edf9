package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/inkwell-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

// errorBody is the failure envelope shared by every endpoint.
type errorBody struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// writeJSON writes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}

// writeError translates a service error into the failure envelope. The
// mapping deliberately says nothing about storage internals: a revoked and a
// never-issued token produce identical responses, as do unknown-email and
// wrong-password logins.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials", "The provided credentials are incorrect")
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeFailure(w, http.StatusUnauthorized, "Unauthenticated", "Authentication required")
	case errors.Is(err, apperr.ErrForbidden):
		writeFailure(w, http.StatusForbidden, "Forbidden", "You are not allowed to modify this resource")
	case errors.Is(err, apperr.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Not found", "The requested resource was not found")
	case errors.Is(err, apperr.ErrDuplicateEmail):
		writeFailure(w, http.StatusConflict, "Conflict", "The email address is already registered")
	default:
		log.Error().Err(err).Msg("Unhandled error in request")
		writeFailure(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
	}
}

// writeValidation writes the 422 envelope with per-field error lists.
func writeValidation(w http.ResponseWriter, fieldErrors map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}

// Unauthenticated is the token middleware's reject callback. Missing,
// revoked, and never-issued tokens all produce this same response.
func Unauthenticated(w http.ResponseWriter, _ *http.Request) {
	writeError(w, apperr.ErrUnauthenticated)
}

func writeFailure(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorBody{Message: message, Error: detail})
}
