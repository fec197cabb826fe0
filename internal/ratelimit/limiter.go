package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Per-IP fixed-window limits for sensitive endpoints.
const (
	defaultWindow      = time.Minute
	defaultMaxRequests = 10
)

// Limiter is a fixed-window per-IP rate limiter backed by Redis.
// Counters expire with the window, so no cleanup is needed.
type Limiter struct {
	client      *redis.Client
	window      time.Duration
	maxRequests int64
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client:      client,
		window:      defaultWindow,
		maxRequests: defaultMaxRequests,
	}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether the IP has exceeded the
// window limit for the given purpose (e.g. "login", "signup").
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return count >= l.maxRequests, nil
}

// RecordIPRequestWithPurpose increments the window counter for the IP,
// setting the window TTL on first use.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	_ = incr

	return nil
}
