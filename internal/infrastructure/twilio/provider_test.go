package twilio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/idv-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type mockCreator struct {
	mock.Mock
	delay time.Duration
}

func (m *mockCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	args := m.Called(params)
	msg, _ := args.Get(0).(*twilioApi.ApiV2010Message)
	return msg, args.Error(1)
}

func status(s string) *twilioApi.ApiV2010Message {
	return &twilioApi.ApiV2010Message{Status: &s}
}

var otpMsg = domain.OTPMessage{Phone: "+14155552671", Text: "1234 is your code", Code: "1234"}

func TestNewProvider_MissingCredentials(t *testing.T) {
	_, err := NewProvider("AC123", "", "MG123", time.Second)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSendMessage_SetsParams(t *testing.T) {
	api := &mockCreator{}
	api.On("CreateMessage", mock.MatchedBy(func(p *twilioApi.CreateMessageParams) bool {
		return *p.To == "+14155552671" && *p.MessagingServiceSid == "MG123" && *p.Body == "1234 is your code"
	})).Return(status("accepted"), nil)

	p := &Provider{api: api, serviceSID: "MG123"}
	require.NoError(t, p.SendMessage(context.Background(), otpMsg))
	api.AssertExpectations(t)
}

func TestSendMessage_APIError(t *testing.T) {
	api := &mockCreator{}
	api.On("CreateMessage", mock.Anything).Return(nil, errors.New("status: 400 code 21211"))

	p := &Provider{api: api, serviceSID: "MG123"}
	assert.Error(t, p.SendMessage(context.Background(), otpMsg))
}

func TestSendMessage_FailedStatus(t *testing.T) {
	api := &mockCreator{}
	api.On("CreateMessage", mock.Anything).Return(status("failed"), nil)

	p := &Provider{api: api, serviceSID: "MG123"}
	assert.ErrorContains(t, p.SendMessage(context.Background(), otpMsg), "failed")
}

func TestSendMessage_HonoursDeadline(t *testing.T) {
	api := &mockCreator{delay: 200 * time.Millisecond}
	api.On("CreateMessage", mock.Anything).Return(status("queued"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	p := &Provider{api: api, serviceSID: "MG123"}
	err := p.SendMessage(ctx, otpMsg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
