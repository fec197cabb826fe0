package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpTTL = 10 * time.Minute

// RedisOTPRepository stores email verification codes in Redis. Expiry is
// handled by the key TTL, so an absent key means invalid or expired.
type RedisOTPRepository struct {
	client *redis.Client
}

func NewRedisOTPRepository(client *redis.Client) *RedisOTPRepository {
	return &RedisOTPRepository{client: client}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", strings.ToLower(email))
}

// StoreOTP saves the code for the address, replacing any previous one.
func (r *RedisOTPRepository) StoreOTP(ctx context.Context, email, code string) error {
	if err := r.client.Set(ctx, otpKey(email), code, otpTTL).Err(); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

// GetOTP returns the current code for the address.
func (r *RedisOTPRepository) GetOTP(ctx context.Context, email string) (string, error) {
	code, err := r.client.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get OTP: %w", err)
	}
	return code, nil
}

// DeleteOTP removes a used code.
func (r *RedisOTPRepository) DeleteOTP(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete OTP: %w", err)
	}
	return nil
}
