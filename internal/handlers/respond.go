package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/appwrite"
	"github.com/netchat/netchat/internal/models"
)

// maxBodySize limits request bodies to 1MB.
const maxBodySize = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("[HTTP] Failed to encode response")
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "invalid request body")
	}
	return nil
}

// statusFor maps an error onto an HTTP status code.
func statusFor(err error) int {
	var (
		validationErr *models.ValidationError
		networkErr    *models.NetworkError
		apiErr        *appwrite.APIError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &networkErr), errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Server-side failures are logged
// and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusUnauthorized:
		message = "Authentication failed"
	case http.StatusNotFound:
		message = "Not found"
	case http.StatusInternalServerError, http.StatusBadGateway:
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("[HTTP] Request failed")
		message = http.StatusText(status)
	}
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
