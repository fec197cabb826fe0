package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const passwordResetTokenTTL = 1 * time.Hour

// RedisPasswordResetRepository stores password reset tokens in Redis with
// a 1-hour TTL. Tokens are hashed before use as keys.
type RedisPasswordResetRepository struct {
	client *redis.Client
}

func NewRedisPasswordResetRepository(client *redis.Client) *RedisPasswordResetRepository {
	return &RedisPasswordResetRepository{client: client}
}

func passwordResetKey(token string) string {
	return fmt.Sprintf("password_reset:%s", hashToken(token))
}

// StoreResetToken maps the token to the user for the reset window.
func (r *RedisPasswordResetRepository) StoreResetToken(ctx context.Context, userID int64, token string) error {
	key := passwordResetKey(token)
	if err := r.client.Set(ctx, key, strconv.FormatInt(userID, 10), passwordResetTokenTTL).Err(); err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}
	return nil
}

// GetResetToken returns the user the token belongs to. An expired token
// has already been evicted by Redis, so it reports not-found.
func (r *RedisPasswordResetRepository) GetResetToken(ctx context.Context, token string) (int64, error) {
	userIDStr, err := r.client.Get(ctx, passwordResetKey(token)).Result()
	if err == redis.Nil {
		return 0, ErrResetTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get password reset token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse user id: %w", err)
	}
	return userID, nil
}

// DeleteResetToken removes a used token.
func (r *RedisPasswordResetRepository) DeleteResetToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, passwordResetKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete password reset token: %w", err)
	}
	return nil
}

// hashToken produces a stable digest so raw secrets never appear in Redis keys.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
