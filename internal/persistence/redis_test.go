package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/ticket-mgt/ticket-api/internal/config"
)

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(config.RedisConfig{Addr: "cache:6379", Password: "pw", DB: 2, DialTimeoutMs: 250})
	if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("options = %+v", opts)
	}
	if opts.DialTimeout != 250*time.Millisecond || opts.ReadTimeout != opts.DialTimeout {
		t.Fatalf("timeouts = %v / %v", opts.DialTimeout, opts.ReadTimeout)
	}
}

func TestNilClientsReportNotConfigured(t *testing.T) {
	var r *Redis
	if err := r.Ping(context.Background()); err == nil {
		t.Fatalf("nil redis ping succeeded")
	}
	r.Close()

	var p *Postgres
	if err := p.Ping(context.Background()); err == nil {
		t.Fatalf("nil postgres ping succeeded")
	}
	if p.PoolHandle() != nil {
		t.Fatalf("nil postgres returned a pool")
	}
	p.Close()
}

func TestNewPostgres_RequiresDSN(t *testing.T) {
	if _, err := NewPostgres(context.Background(), config.PostgresConfig{}, nil); err == nil {
		t.Fatalf("expected error without a dsn")
	}
}

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig(config.PostgresConfig{
		DSN:            "postgres://u:p@localhost:5432/tickets",
		MaxConns:       8,
		MinConns:       20,
		ConnMaxIdleSec: 10,
	})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.MaxConns != 8 {
		t.Errorf("max conns = %d", cfg.MaxConns)
	}
	if cfg.MinConns > cfg.MaxConns {
		t.Errorf("min conns %d exceeds max %d", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.MaxConnIdleTime != 10*time.Second {
		t.Errorf("idle = %v", cfg.MaxConnIdleTime)
	}
	if cfg.ConnConfig.Database != "tickets" {
		t.Errorf("database = %q", cfg.ConnConfig.Database)
	}

	if _, err := poolConfig(config.PostgresConfig{DSN: "postgres://%zz"}); err == nil {
		t.Errorf("expected parse error")
	}
}
