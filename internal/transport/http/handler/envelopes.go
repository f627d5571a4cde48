package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WebhookAck is returned to the verification provider for every accepted delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}

// SessionEnvelope is returned when a verification session is issued.
type SessionEnvelope struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// SuccessEnvelope is returned when an OTP is delivered.
type SuccessEnvelope struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
