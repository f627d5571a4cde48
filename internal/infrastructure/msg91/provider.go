package msg91

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/idv-gateway/internal/domain"
	"github.com/idv-gateway/internal/pkg/phone"
)

const flowPath = "/api/v5/flow/"

// Provider sends OTPs through the MSG91 flow API. The message text lives in the
// MSG91 template; only the code is sent.
type Provider struct {
	baseURL    string
	authKey    string
	templateID string
	httpClient *http.Client
}

// NewProvider returns domain.ErrConfig when the auth key or template id is missing.
func NewProvider(baseURL, authKey, templateID string, timeout time.Duration) (*Provider, error) {
	if authKey == "" || templateID == "" {
		return nil, fmt.Errorf("msg91 credentials: %w", domain.ErrConfig)
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authKey:    authKey,
		templateID: templateID,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (p *Provider) Name() string { return "msg91" }

type flowRequest struct {
	TemplateID string          `json:"template_id"`
	Recipients []flowRecipient `json:"recipients"`
}

type flowRecipient struct {
	Mobiles string `json:"mobiles"`
	OTP     string `json:"otp"`
}

type flowResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (p *Provider) SendMessage(ctx context.Context, msg domain.OTPMessage) error {
	body, err := json.Marshal(flowRequest{
		TemplateID: p.templateID,
		Recipients: []flowRecipient{{Mobiles: phone.Digits(msg.Phone), OTP: msg.Code}},
	})
	if err != nil {
		return fmt.Errorf("msg91: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+flowPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("msg91: build request: %w", err)
	}
	req.Header.Set("authkey", p.authKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("msg91: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("msg91: status %d", resp.StatusCode)
	}
	// MSG91 reports some rejections as 200 with type=error.
	var fr flowResponse
	if json.Unmarshal(raw, &fr) == nil && strings.EqualFold(fr.Type, "error") {
		return fmt.Errorf("msg91: rejected: %s", fr.Message)
	}
	return nil
}
