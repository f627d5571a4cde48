package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound = errors.New("not found")

	// ErrConfig means required credentials are missing. Not retryable.
	ErrConfig = errors.New("configuration error")
	// ErrUnauthenticated means the caller identity is missing or invalid.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUpstreamUnavailable covers network and non-2xx failures of an outbound provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrRateLimited is a policy rejection; callers must not retry automatically.
	ErrRateLimited = errors.New("rate limited")
	// ErrPersistence wraps any Session Store failure.
	ErrPersistence = errors.New("persistence error")
	// ErrMalformedInput means the request body could not be parsed or routed.
	ErrMalformedInput = errors.New("malformed input")
	// ErrAllProvidersFailed is returned when every SMS provider in the failover list failed.
	ErrAllProvidersFailed = errors.New("failed to send sms")
)
