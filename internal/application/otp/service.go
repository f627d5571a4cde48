package otp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/idv-gateway/internal/domain"
	"github.com/idv-gateway/internal/pkg/phone"
)

// Service sends one-time passcodes under the per-phone rate limit.
type Service interface {
	// Send returns the provider that delivered the code.
	Send(ctx context.Context, req domain.SendOTPRequest) (string, error)
}

type ServiceDeps struct {
	Attempts        AttemptLog
	Providers       []Provider
	Window          time.Duration
	MaxAttempts     int
	ProviderTimeout time.Duration
	BrandName       string
}

type service struct {
	limiter    *Limiter
	dispatcher *Dispatcher
	brand      string
	validity   time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		limiter:    NewLimiter(deps.Attempts, deps.Window, deps.MaxAttempts),
		dispatcher: NewDispatcher(deps.ProviderTimeout, deps.Providers...),
		brand:      deps.BrandName,
		validity:   deps.Window,
	}
}

func (s *service) Send(ctx context.Context, req domain.SendOTPRequest) (string, error) {
	to, err := phone.Normalize(req.User.Phone)
	if err != nil {
		return "", fmt.Errorf("phone: %w", domain.ErrMalformedInput)
	}
	if err := s.limiter.CheckAndRecord(ctx, to); err != nil {
		return "", err
	}

	provider, err := s.dispatcher.Send(ctx, domain.OTPMessage{
		Phone: to,
		Text:  s.render(req.SMS.OTP),
		Code:  req.SMS.OTP,
	})
	if err != nil {
		slog.Error("otp not delivered", "phone_suffix", suffix(to), "err", err)
		return "", err
	}
	return provider, nil
}

func (s *service) render(code string) string {
	return fmt.Sprintf("%s is your verification code for %s. Valid for %d mins. Team %s",
		code, s.brand, int(s.validity.Minutes()), s.brand)
}

// suffix keeps phone numbers out of logs beyond the last four digits.
func suffix(p string) string {
	if len(p) <= 4 {
		return p
	}
	return p[len(p)-4:]
}
