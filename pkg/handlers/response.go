// Package handlers implements the HTTP surface of gigplane-engine. Handlers
// decode requests, call services, and translate typed service errors to
// status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ServiceErrorResponse maps a typed service error to its HTTP status and
// writes the JSON error body. Untyped errors become 500 with a generic
// message so internals never leak to clients.
func ServiceErrorResponse(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		status    int
		errorCode string
		message   = err.Error()
	)
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status, errorCode = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, apperrors.ErrNotFound):
		status, errorCode = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		status, errorCode = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrInvalidState):
		status, errorCode = http.StatusUnprocessableEntity, "invalid_state"
	case errors.Is(err, apperrors.ErrConflict):
		status, errorCode = http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, errorCode = http.StatusUnauthorized, "invalid_credentials"
		message = "Invalid email or password"
	default:
		logger.Error("request failed", zap.Error(err))
		status, errorCode = http.StatusInternalServerError, "internal_error"
		message = "Internal server error"
	}

	if err := ErrorResponse(w, status, errorCode, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
