package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idv-gateway/internal/application/webhook"
	"github.com/idv-gateway/internal/domain"
	jwtinfra "github.com/idv-gateway/internal/infrastructure/jwt"
	"github.com/idv-gateway/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockWebhookSvc struct{ mock.Mock }

func (m *mockWebhookSvc) Handle(ctx context.Context, payload []byte) (webhook.NormalizedEvent, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(webhook.NormalizedEvent), args.Error(1)
}

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) CreateSession(ctx context.Context, claims domain.UserIdentity, person domain.Person) (*domain.IssuedSession, error) {
	args := m.Called(ctx, claims, person)
	if s, _ := args.Get(0).(*domain.IssuedSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Send(ctx context.Context, req domain.SendOTPRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func withClaims(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithClaims(r.Context(), &jwtinfra.Claims{UserID: userID, SessionID: "auth-1"}))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Error
}

// --- webhook ---

func TestWebhook_AcksHandledPayload(t *testing.T) {
	svc := &mockWebhookSvc{}
	body := []byte(`{"id":"s1","action":"started"}`)
	svc.On("Handle", mock.Anything, body).Return(webhook.NormalizedEvent{Kind: webhook.KindLifecycle}, nil)

	rr := httptest.NewRecorder()
	NewWebhookHandler(svc).Veriff(rr, httptest.NewRequest(http.MethodPost, "/v1/webhooks/veriff", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"received":true}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestWebhook_MalformedIs400(t *testing.T) {
	svc := &mockWebhookSvc{}
	svc.On("Handle", mock.Anything, mock.Anything).
		Return(webhook.NormalizedEvent{}, fmt.Errorf("decode: %w", domain.ErrMalformedInput))

	rr := httptest.NewRecorder()
	NewWebhookHandler(svc).Veriff(rr, httptest.NewRequest(http.MethodPost, "/v1/webhooks/veriff", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid request", decodeError(t, rr))
}

// --- verification sessions ---

func TestCreateSession_MissingClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	NewVerificationHandler(&mockVerificationSvc{}).CreateSession(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateSession_EmptyBodyAllowed(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("CreateSession", mock.Anything, domain.UserIdentity{UserID: "u1", SessionID: "auth-1"}, domain.Person{}).
		Return(&domain.IssuedSession{SessionID: "s1", SessionURL: "https://v/s1"}, nil)

	rr := httptest.NewRecorder()
	NewVerificationHandler(svc).CreateSession(rr, withClaims(httptest.NewRequest(http.MethodPost, "/", nil), "u1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"url":"https://v/s1","id":"s1"}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestCreateSession_PassesName(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("CreateSession", mock.Anything, mock.Anything, domain.Person{FirstName: "Ada", LastName: "Lovelace"}).
		Return(&domain.IssuedSession{SessionID: "s1", SessionURL: "https://v/s1"}, nil)

	body := bytes.NewBufferString(`{"firstName":"Ada","lastName":"Lovelace"}`)
	rr := httptest.NewRecorder()
	NewVerificationHandler(svc).CreateSession(rr, withClaims(httptest.NewRequest(http.MethodPost, "/", body), "u1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestCreateSession_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("keys: %w", domain.ErrConfig), http.StatusBadRequest},
		{fmt.Errorf("%w: veriff: status 500: boom", domain.ErrUpstreamUnavailable), http.StatusBadRequest},
		{fmt.Errorf("%w: dynamo", domain.ErrPersistence), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &mockVerificationSvc{}
		svc.On("CreateSession", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

		rr := httptest.NewRecorder()
		NewVerificationHandler(svc).CreateSession(rr, withClaims(httptest.NewRequest(http.MethodPost, "/", nil), "u1"))

		assert.Equal(t, tc.code, rr.Code, tc.err.Error())
		assert.NotContains(t, rr.Body.String(), "boom")
	}
}

// --- otp ---

const otpBody = `{"user":{"phone":"+14155552671"},"sms":{"otp":"123456"}}`

func TestSendOTP_Success(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Send", mock.Anything, mock.MatchedBy(func(req domain.SendOTPRequest) bool {
		return req.User.Phone == "+14155552671" && req.SMS.OTP == "123456"
	})).Return("twilio", nil)

	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Send(rr, httptest.NewRequest(http.MethodPost, "/v1/otp/send", bytes.NewBufferString(otpBody)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestSendOTP_RateLimited(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Send", mock.Anything, mock.Anything).Return("", fmt.Errorf("3 attempts: %w", domain.ErrRateLimited))

	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Send(rr, httptest.NewRequest(http.MethodPost, "/v1/otp/send", bytes.NewBufferString(otpBody)))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Too many requests", decodeError(t, rr))
}

func TestSendOTP_AllProvidersFailed(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Send", mock.Anything, mock.Anything).Return("", domain.ErrAllProvidersFailed)

	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Send(rr, httptest.NewRequest(http.MethodPost, "/v1/otp/send", bytes.NewBufferString(otpBody)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to send SMS", decodeError(t, rr))
}

func TestSendOTP_InvalidBody(t *testing.T) {
	for _, body := range []string{`nope`, `{"user":{"phone":""},"sms":{"otp":"1234"}}`, `{"user":{"phone":"+14155552671"},"sms":{"otp":"ab"}}`} {
		svc := &mockOTPSvc{}
		rr := httptest.NewRecorder()
		NewOTPHandler(svc).Send(rr, httptest.NewRequest(http.MethodPost, "/v1/otp/send", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	}
}

func TestClassify_UnknownErrorIs500(t *testing.T) {
	code, msg := classify(errors.New("surprise"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", msg)
}
