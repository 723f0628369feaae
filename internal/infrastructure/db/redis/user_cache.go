package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const userCacheTTL = time.Hour

// UserCache memoises remote login → user id lookups.
// Key format: user_id:<login>
type UserCache struct {
	client *redis.Client
}

func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{client: client}
}

// GetUserID returns the cached remote id for a login, with ok reporting a hit.
func (c *UserCache) GetUserID(ctx context.Context, login string) (int, bool, error) {
	val, err := c.client.Get(ctx, c.key(login)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("user cache get: %w", err)
	}
	id, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("user cache decode: %w", err)
	}
	return id, true, nil
}

// SetUserID caches the remote id for a login (expires after userCacheTTL).
func (c *UserCache) SetUserID(ctx context.Context, login string, id int) error {
	return c.client.Set(ctx, c.key(login), strconv.Itoa(id), userCacheTTL).Err()
}

func (c *UserCache) key(login string) string {
	return "user_id:" + login
}
