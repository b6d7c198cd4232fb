package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/fjod/go_storefront/internal/remote"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleError converts domain and transport errors into HTTP answers.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		httpStatus int
		code       string
		message    = err.Error()
	)

	var apiErr *remote.APIError
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		httpStatus, code = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidOffer),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, presentation.ErrInvalidDiscount),
		errors.Is(err, session.ErrInvalidSession):
		httpStatus, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, auth.ErrUserNotFound):
		httpStatus, code = http.StatusUnauthorized, "user_not_found"
	case errors.Is(err, auth.ErrInvalidPassword):
		httpStatus, code = http.StatusUnauthorized, "invalid_password"
	case errors.Is(err, auth.ErrInvalidToken):
		httpStatus, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, auth.ErrUserExists):
		httpStatus, code = http.StatusConflict, "already_exists"
	case errors.Is(err, service.ErrForbidden):
		httpStatus, code = http.StatusForbidden, "permission_denied"
	case errors.Is(err, service.ErrOrderLocked):
		httpStatus, code = http.StatusConflict, "order_locked"
	case errors.Is(err, remote.ErrNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, remote.ErrUnavailable),
		errors.Is(err, session.ErrStateUnavailable):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &apiErr):
		httpStatus, code = http.StatusBadGateway, "upstream_error"
	default:
		httpStatus, code = http.StatusInternalServerError, "internal_error"
		message = "internal server error"
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	respondError(w, httpStatus, code, message)
}
