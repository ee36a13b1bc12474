//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newRedisTestClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	return client
}

func TestIntegrationRedisTokenCache(t *testing.T) {
	client := newRedisTestClient(t)
	ctx := context.Background()
	c := NewRedisTokenCache(client, time.Minute)
	token := "it-" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = c.Delete(ctx, token) })

	if _, ok, err := c.Get(ctx, token); err != nil || ok {
		t.Fatalf("Get before Set = %v, %v; want a miss", ok, err)
	}
	if err := c.Set(ctx, token, "u1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	id, ok, err := c.Get(ctx, token)
	if err != nil || !ok || id != "u1" {
		t.Fatalf("Get = %q, %v, %v", id, ok, err)
	}
	ttl, err := client.TTL(ctx, tokenKeyPrefix+token).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %v, %v", ttl, err)
	}

	if err := c.Delete(ctx, token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, token); ok {
		t.Fatalf("token still cached after Delete")
	}
}
