package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "ticketmgt:token:"

// TokenCache maps bearer tokens to user ids in front of the credential store.
// A miss is reported with ok=false and a nil error.
type TokenCache interface {
	Get(ctx context.Context, token string) (userID string, ok bool, err error)
	Set(ctx context.Context, token, userID string) error
	Delete(ctx context.Context, token string) error
}

// RedisTokenCache stores token lookups as plain string keys with a TTL.
type RedisTokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenCache builds a Redis-backed cache.
func NewRedisTokenCache(client *redis.Client, ttl time.Duration) *RedisTokenCache {
	return &RedisTokenCache{client: client, ttl: ttl}
}

func (c *RedisTokenCache) Get(ctx context.Context, token string) (string, bool, error) {
	userID, err := c.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, token, userID string) error {
	return c.client.Set(ctx, tokenKeyPrefix+token, userID, c.ttl).Err()
}

func (c *RedisTokenCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, tokenKeyPrefix+token).Err()
}

// NoopTokenCache never hits.
type NoopTokenCache struct{}

func (NoopTokenCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NoopTokenCache) Set(context.Context, string, string) error         { return nil }
func (NoopTokenCache) Delete(context.Context, string) error              { return nil }
