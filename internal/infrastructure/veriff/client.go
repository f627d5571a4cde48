package veriff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/idv-gateway/internal/config"
	"github.com/idv-gateway/internal/domain"
)

const sessionsPath = "/v1/sessions"

// Client issues verification sessions against the Veriff station API.
type Client struct {
	baseURL      string
	apiKey       string
	sharedSecret string
	callbackURL  string
	httpClient   *http.Client
	now          func() time.Time
}

func NewClient(cfg config.Veriff) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		sharedSecret: cfg.SharedSecret,
		callbackURL:  cfg.CallbackURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		now:          time.Now,
	}
}

type sessionRequest struct {
	Verification sessionRequestBody `json:"verification"`
}

type sessionRequestBody struct {
	Callback   string         `json:"callback,omitempty"`
	Person     *domain.Person `json:"person,omitempty"`
	VendorData string         `json:"vendorData"`
	Timestamp  string         `json:"timestamp"`
}

type sessionResponse struct {
	Status       string               `json:"status"`
	Verification domain.IssuedSession `json:"verification"`
}

// CreateSession opens a session for subjectID. vendorData is always subjectID:
// it is the only field Veriff echoes back on callbacks.
func (c *Client) CreateSession(ctx context.Context, subjectID string, person *domain.Person) (*domain.IssuedSession, error) {
	if c.apiKey == "" || c.sharedSecret == "" {
		return nil, fmt.Errorf("veriff api key or shared secret missing: %w", domain.ErrConfig)
	}
	if strings.TrimSpace(subjectID) == "" {
		return nil, fmt.Errorf("subject id required: %w", domain.ErrMalformedInput)
	}
	if person != nil && *person == (domain.Person{}) {
		person = nil
	}

	body, err := json.Marshal(sessionRequest{Verification: sessionRequestBody{
		Callback:   c.callbackURL,
		Person:     person,
		VendorData: subjectID,
		Timestamp:  c.now().UTC().Format(time.RFC3339Nano),
	}})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAuthClient, c.apiKey)
	req.Header.Set(HeaderSignature, Sign(body, c.sharedSecret))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: veriff: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("%w: veriff: read body: %v", domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: veriff: status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, snippet(raw))
	}

	var out sessionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: veriff: decode response: %v", domain.ErrUpstreamUnavailable, err)
	}
	if out.Verification.SessionID == "" || out.Verification.SessionURL == "" {
		return nil, fmt.Errorf("%w: veriff: response without session id or url", domain.ErrUpstreamUnavailable)
	}
	return &out.Verification, nil
}

func snippet(b []byte) string {
	const max = 256
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
