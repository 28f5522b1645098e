package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/campaign-service/internal/domain"
)

// UserCache accelerates user lookups by email. The store is authoritative;
// every method degrades to a miss/no-op on Redis errors.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache builds a cache around an existing Redis client.
func NewUserCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *UserCache {
	return &UserCache{client: client, ttl: ttl, logger: logger}
}

func userKey(email string) string {
	return "user:" + strings.ToLower(email)
}

// Get returns the cached sanitized user, or nil on miss.
func (c *UserCache) Get(ctx context.Context, email string) *domain.User {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("user cache get failed", zap.Error(err))
		}
		return nil
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		c.logger.Warn("user cache entry corrupt; dropping", zap.Error(err))
		_ = c.client.Del(ctx, userKey(email)).Err()
		return nil
	}
	return &user
}

// Set stores the sanitized user keyed by email.
func (c *UserCache) Set(ctx context.Context, user *domain.User) {
	if c == nil || c.client == nil || user == nil {
		return
	}
	raw, err := json.Marshal(user.Sanitized())
	if err != nil {
		c.logger.Warn("user cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, userKey(user.Email), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("user cache set failed", zap.Error(err))
	}
}
