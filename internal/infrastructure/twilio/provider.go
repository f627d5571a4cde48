package twilio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/idv-gateway/internal/domain"
	twiliosdk "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the slice of the Twilio REST API this provider uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Provider sends SMS through a Twilio Messaging Service.
type Provider struct {
	api        messageCreator
	serviceSID string
}

// NewProvider returns domain.ErrConfig when any credential is missing.
func NewProvider(accountSID, authToken, messagingServiceSID string, timeout time.Duration) (*Provider, error) {
	if accountSID == "" || authToken == "" || messagingServiceSID == "" {
		return nil, fmt.Errorf("twilio credentials: %w", domain.ErrConfig)
	}
	client := twiliosdk.NewRestClientWithParams(twiliosdk.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Provider{api: client.Api, serviceSID: messagingServiceSID}, nil
}

func (p *Provider) Name() string { return "twilio" }

// SendMessage submits msg.Text. The SDK call has no context parameter, so the
// caller's deadline is honoured by abandoning the call; the client timeout
// bounds the abandoned request.
func (p *Provider) SendMessage(ctx context.Context, msg domain.OTPMessage) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.Phone)
	params.SetMessagingServiceSid(p.serviceSID)
	params.SetBody(msg.Text)

	type result struct {
		msg *twilioApi.ApiV2010Message
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := p.api.CreateMessage(params)
		done <- result{msg: m, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("twilio: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("twilio: %w", r.err)
		}
		if r.msg != nil && r.msg.Status != nil {
			switch *r.msg.Status {
			case "failed", "undelivered":
				return errors.New("twilio: message " + *r.msg.Status)
			}
		}
		return nil
	}
}
