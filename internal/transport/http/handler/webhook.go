package handler

import (
	"io"
	"net/http"

	"github.com/idv-gateway/internal/application/webhook"
	"github.com/idv-gateway/internal/transport/http/middleware"
)

// WebhookHandler receives verification provider callbacks.
type WebhookHandler struct {
	svc webhook.Service
}

func NewWebhookHandler(svc webhook.Service) *WebhookHandler { return &WebhookHandler{svc: svc} }

// Veriff acknowledges every parseable delivery with 200, including ones that
// failed to persist, so the provider does not redeliver in a loop.
func (h *WebhookHandler) Veriff(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, middleware.MaxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if _, err := h.svc.Handle(r.Context(), body); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WebhookAck{Received: true})
}
