package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/idv-gateway/internal/domain"
)

// httpError maps domain sentinel errors to a status code and a fixed message.
// Wrapped detail (provider responses, store errors) is logged, never returned.
func httpError(w http.ResponseWriter, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "err", err)
	} else {
		slog.Warn("request rejected", "status", status, "err", err)
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrConfig):
		return http.StatusBadRequest, "provider not configured"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadRequest, "verification provider unavailable"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests"
	case errors.Is(err, domain.ErrAllProvidersFailed):
		return http.StatusInternalServerError, "Failed to send SMS"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, "could not save request"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// MethodNotAllowed answers every unsupported method with a JSON 405.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// Unauthorized rejects a request that could not be authenticated.
func Unauthorized(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, "unauthorized")
}
