package otp

import (
	"context"
	"log/slog"
	"time"

	"github.com/idv-gateway/internal/domain"
)

// Provider is one SMS gateway in the failover list.
type Provider interface {
	Name() string
	SendMessage(ctx context.Context, msg domain.OTPMessage) error
}

// Dispatcher tries providers in order and stops at the first success.
// There is no retry inside a provider; the next provider is the retry.
type Dispatcher struct {
	providers []Provider
	timeout   time.Duration
}

func NewDispatcher(timeout time.Duration, providers ...Provider) *Dispatcher {
	return &Dispatcher{providers: providers, timeout: timeout}
}

// Send returns the name of the provider that accepted msg. Provider errors are
// logged and never returned; when all fail the caller gets domain.ErrAllProvidersFailed.
func (d *Dispatcher) Send(ctx context.Context, msg domain.OTPMessage) (string, error) {
	for i, p := range d.providers {
		err := d.attempt(ctx, p, msg)
		if err == nil {
			if i > 0 {
				slog.Info("sms delivered by fallback provider", "provider", p.Name(), "position", i)
			}
			return p.Name(), nil
		}
		slog.Warn("sms provider failed", "provider", p.Name(), "err", err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", domain.ErrAllProvidersFailed
}

func (d *Dispatcher) attempt(ctx context.Context, p Provider, msg domain.OTPMessage) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return p.SendMessage(ctx, msg)
}
