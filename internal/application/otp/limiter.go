package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/idv-gateway/internal/domain"
)

// AttemptLog is the append-only record of accepted OTP sends.
type AttemptLog interface {
	CountRecentOtpAttempts(ctx context.Context, phone string, windowStart time.Time) (int, error)
	RecordOtpAttempt(ctx context.Context, phone string) error
}

// Limiter bounds OTP sends per phone number over a rolling window.
type Limiter struct {
	log         AttemptLog
	window      time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewLimiter(log AttemptLog, window time.Duration, maxAttempts int) *Limiter {
	return &Limiter{log: log, window: window, maxAttempts: maxAttempts, now: time.Now}
}

// CheckAndRecord returns domain.ErrRateLimited once maxAttempts sends are already
// logged for phone inside the window. Otherwise it logs this attempt before
// returning, so concurrent callers each see the others. Count and insert are
// separate steps: the log may over-count, never under-count.
func (l *Limiter) CheckAndRecord(ctx context.Context, phone string) error {
	windowStart := l.now().Add(-l.window)
	n, err := l.log.CountRecentOtpAttempts(ctx, phone, windowStart)
	if err != nil {
		return fmt.Errorf("%w: count otp attempts: %w", domain.ErrPersistence, err)
	}
	if n >= l.maxAttempts {
		return fmt.Errorf("%d attempts in %s: %w", n, l.window, domain.ErrRateLimited)
	}
	if err := l.log.RecordOtpAttempt(ctx, phone); err != nil {
		return fmt.Errorf("%w: record otp attempt: %w", domain.ErrPersistence, err)
	}
	return nil
}
