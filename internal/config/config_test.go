package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	os.Unsetenv("APP_PORT")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != "3002" || cfg.Store.Driver != StoreDriverFile || cfg.Store.DataFile != "data/db.json" {
		t.Fatalf("defaults = %+v %+v", cfg.App, cfg.Store)
	}
	if cfg.Auth.TokenPrefix != "mocked-jwt" || !cfg.Auth.HashPasswords {
		t.Fatalf("auth defaults = %+v", cfg.Auth)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.App.RequestTimeout() != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.App.RequestTimeout())
	}
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "STORE_DRIVER=memory\nAPP_PORT=4000\nREDIS_TOKEN_TTL_MINUTES=5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_PORT", "5000")
	t.Setenv("STORE_DRIVER", "")
	os.Unsetenv("STORE_DRIVER")
	t.Setenv("REDIS_TOKEN_TTL_MINUTES", "")
	os.Unsetenv("REDIS_TOKEN_TTL_MINUTES")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreDriverMemory {
		t.Fatalf("driver = %q, want value from env file", cfg.Store.Driver)
	}
	if cfg.App.Port != "5000" {
		t.Fatalf("port = %q, environment should win over the file", cfg.App.Port)
	}
	if cfg.Redis.TokenTTL() != 5*time.Minute {
		t.Fatalf("ttl = %v", cfg.Redis.TokenTTL())
	}
	if cfg.App.Addr() != "0.0.0.0:5000" {
		t.Fatalf("addr = %q", cfg.App.Addr())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"file store", func(c *Config) {}, false},
		{"driver is normalized", func(c *Config) { c.Store.Driver = " Memory " }, false},
		{"file store without path", func(c *Config) { c.Store.DataFile = "" }, true},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = StoreDriverPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Store.Driver = StoreDriverPostgres
			c.Postgres.DSN = "postgres://localhost/tickets"
		}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, true},
		{"jwt format", func(c *Config) { c.Auth.TokenFormat = "JWT" }, false},
		{"unknown token format", func(c *Config) { c.Auth.TokenFormat = "paseto" }, true},
		{"console logs", func(c *Config) { c.Logger.Format = "console" }, false},
		{"unknown log format", func(c *Config) { c.Logger.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Store:  StoreConfig{Driver: StoreDriverFile, DataFile: "data/db.json"},
				Logger: LoggerConfig{Format: "json"},
				Auth:   AuthConfig{TokenFormat: "opaque"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	if got := (AppConfig{RequestTimeoutSeconds: 0}).RequestTimeout(); got != 0 {
		t.Fatalf("RequestTimeout(0) = %v, want disabled", got)
	}
	if got := (RedisConfig{TokenTTLMinutes: -1}).TokenTTL(); got != time.Hour {
		t.Fatalf("TokenTTL(-1) = %v, want 1h", got)
	}
}
