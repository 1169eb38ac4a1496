package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/logger"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/validator"
)

// ErrorResponse is the flat error envelope returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the success envelope for write operations.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged but headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an error response based on the error type. AppError
// messages are passed through with their status; anything else becomes a
// generic 500 so internal details never reach the client. Internal errors
// are logged with the request-scoped logger from context (set by the
// RequestLogger middleware), falling back to the given logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "internal error",
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		WriteJSON(w, appErr.Status, ErrorResponse{Error: appErr.Message})
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "An unexpected error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		message = "Not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		message = "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		message = "Forbidden"
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteValidationError writes a 400 response for request validation failures.
// Required-field failures collapse into a single "Missing required fields"
// message listing the offending fields.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		if missing := valErr.MissingFields(); len(missing) > 0 {
			WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error: "Missing required fields: " + strings.Join(missing, ", "),
			})
			return
		}
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: valErr.Error()})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// DecodeJSON decodes the request body into v, rejecting unknown payloads
// larger than 16 MiB so oversized photo batches cannot exhaust memory.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 16<<20))
	if err := dec.Decode(v); err != nil {
		return apperrors.InvalidInput("invalid JSON body")
	}
	return nil
}

// ParseUUID validates that the given string is a valid UUID and returns it.
// If invalid, it writes a 400 Bad Request response and returns uuid.Nil plus
// false, signaling the caller to return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid review id: " + param})
		return uuid.Nil, false
	}
	return id, true
}
