package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/idv-gateway/internal/infrastructure/veriff"
)

// MaxWebhookBody caps how much of a provider callback is read.
const MaxWebhookBody = 1 << 20

// VeriffSignature rejects requests whose X-HMAC-SIGNATURE does not match the body.
// The body is buffered and handed on unchanged.
func VeriffSignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, MaxWebhookBody))
			if err != nil {
				reject(w, http.StatusBadRequest, "unreadable body")
				return
			}
			if !veriff.ValidSignature(body, r.Header.Get(veriff.HeaderSignature), secret) {
				reject(w, http.StatusUnauthorized, "invalid signature")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
