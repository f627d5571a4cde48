package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/idv-gateway/internal/application/verification"
	"github.com/idv-gateway/internal/domain"
	"github.com/idv-gateway/internal/transport/http/middleware"
)

// VerificationHandler issues identity-verification sessions.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// CreateSession accepts an optional {firstName, lastName} body.
func (h *VerificationHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var person domain.Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	issued, err := h.svc.CreateSession(r.Context(), claims.Identity(), person)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{URL: issued.SessionURL, ID: issued.SessionID})
}
