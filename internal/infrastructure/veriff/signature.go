package veriff

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	HeaderAuthClient = "X-AUTH-CLIENT"
	HeaderSignature  = "X-HMAC-SIGNATURE"
)

// Sign returns the hex HMAC-SHA256 of body keyed by the integration's shared secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature reports whether signature matches body. Comparison is constant-time
// and case-insensitive on the hex digest.
func ValidSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(Sign(body, secret))
	return hmac.Equal(got, want)
}
