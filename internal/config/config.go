package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store drivers understood by StoreConfig.
const (
	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"ticket-mgt-api"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"3002"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver   string `env:"STORE_DRIVER" envDefault:"file"`
	DataFile string `env:"STORE_DATA_FILE" envDefault:"data/db.json"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
	// ConnectAttempts bounds the startup ping loop while the database comes up.
	ConnectAttempts int `env:"POSTGRES_CONNECT_ATTEMPTS" envDefault:"5"`
}

// RedisConfig holds Redis connection values for the token cache.
type RedisConfig struct {
	Enabled         bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Addr            string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password        string `env:"REDIS_PASSWORD"`
	DB              int    `env:"REDIS_DB" envDefault:"0"`
	TokenTTLMinutes int    `env:"REDIS_TOKEN_TTL_MINUTES" envDefault:"60"`
	DialTimeoutMs   int    `env:"REDIS_DIAL_TIMEOUT_MS" envDefault:"500"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	TokenFormat   string `env:"AUTH_TOKEN_FORMAT" envDefault:"opaque"`
	TokenPrefix   string `env:"AUTH_TOKEN_PREFIX" envDefault:"mocked-jwt"`
	JWTSecret     string `env:"AUTH_JWT_SECRET" envDefault:"dev-secret"`
	HashPasswords bool   `env:"AUTH_HASH_PASSWORDS" envDefault:"true"`
	BcryptCost    int    `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// Load reads configuration from environment variables, applying defaults where possible.
// Each env file is loaded first when present; variables already set in the
// environment win over file values. Callers run Validate after applying any
// overrides of their own.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case StoreDriverFile:
		if c.Store.DataFile == "" {
			return errors.New("STORE_DATA_FILE required for file store")
		}
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN required for postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch strings.ToLower(c.Logger.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.Logger.Format)
	}

	switch strings.ToLower(c.Auth.TokenFormat) {
	case "opaque", "jwt":
	default:
		return fmt.Errorf("unknown AUTH_TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// DialTimeout returns the Redis connect timeout.
func (r RedisConfig) DialTimeout() time.Duration {
	if r.DialTimeoutMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(r.DialTimeoutMs) * time.Millisecond
}

// TokenTTL returns how long cached token lookups live.
func (r RedisConfig) TokenTTL() time.Duration {
	if r.TokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.TokenTTLMinutes) * time.Minute
}
