// Package redis keeps the OTP attempt log in Redis sorted sets, one per phone,
// scored by attempt time in milliseconds.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/idv-gateway/internal/pkg/id"
	goredis "github.com/redis/go-redis/v9"
)

// recordScript appends one attempt, trims entries older than the retention and
// refreshes the key expiry in a single round trip.
var recordScript = goredis.NewScript(`
local now_ms = tonumber(ARGV[1])
local retention_ms = tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now_ms - retention_ms)
redis.call("ZADD", KEYS[1], now_ms, ARGV[3])
redis.call("PEXPIRE", KEYS[1], retention_ms)
return 1
`)

// AttemptLog is a Redis-backed alternative to the DynamoDB attempt table.
type AttemptLog struct {
	client    goredis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

func NewAttemptLog(client goredis.UniversalClient, prefix string, retention time.Duration) *AttemptLog {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "otp:attempts"
	}
	return &AttemptLog{client: client, prefix: prefix, retention: retention, now: time.Now}
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return goredis.NewClient(opts), nil
}

func (l *AttemptLog) CountRecentOtpAttempts(ctx context.Context, phone string, windowStart time.Time) (int, error) {
	n, err := l.client.ZCount(ctx, l.key(phone), strconv.FormatInt(windowStart.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("zcount: %w", err)
	}
	return int(n), nil
}

func (l *AttemptLog) RecordOtpAttempt(ctx context.Context, phone string) error {
	now := l.now()
	err := recordScript.Run(ctx, l.client, []string{l.key(phone)},
		now.UnixMilli(), l.retention.Milliseconds(), id.NewAt(now)).Err()
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (l *AttemptLog) key(phone string) string {
	return l.prefix + ":" + phone
}
