package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// TokenRegistry pins the latest token id per session in Redis.
// Key format: token:<session_id>
type TokenRegistry struct {
	client *redis.Client
}

func NewTokenRegistry(client *redis.Client) *TokenRegistry {
	return &TokenRegistry{client: client}
}

// SetCurrent records tokenID as the session's current token. Earlier tokens
// for the session stop validating from this point on.
func (r *TokenRegistry) SetCurrent(ctx context.Context, sessionID, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(sessionID), tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("set current token: %w", err)
	}
	return nil
}

// Current returns the session's latest token id, or domain.ErrNotFound when
// the session has none (revoked or expired).
func (r *TokenRegistry) Current(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get current token: %w", err)
	}
	return val, nil
}

// Clear drops the session's current token. Deleting a missing key is a no-op,
// keeping logout idempotent.
func (r *TokenRegistry) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (r *TokenRegistry) key(sessionID string) string {
	return "token:" + sessionID
}
