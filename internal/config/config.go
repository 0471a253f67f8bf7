package config

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Lockout  LockoutConfig
	Storage  StorageConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port        string `env:"PORT, default=8080"`
	Environment string `env:"ENVIRONMENT, default=development"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	RateLimit   RateLimitConfig
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=postgres"`
	Password string `env:"DB_PASSWORD, default=postgres"`
	DBName   string `env:"DB_NAME, default=parkify"`
	SSLMode  string `env:"DB_SSL_MODE, default=disable"`
}

// RedisConfig with an empty Host selects the in-process lockout and rate limit stores.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT, default=6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// DefaultJWTSecret is accepted only in development.
const DefaultJWTSecret = "your-secret-key"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set outside development")

type JWTConfig struct {
	Secret            string `env:"JWT_SECRET, default=your-secret-key"`
	ExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES, default=60"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED, default=true"`
	Limit   int           `env:"RATE_LIMIT, default=30"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
}

type LockoutConfig struct {
	MaxAttempts   int           `env:"LOCKOUT_MAX_ATTEMPTS, default=3"`
	Duration      time.Duration `env:"LOCKOUT_DURATION, default=30s"`
	AttemptWindow time.Duration `env:"LOCKOUT_ATTEMPT_WINDOW, default=15m"`
}

// StorageConfig with an empty URL selects the in-memory object store.
// Uploads may only target the buckets listed in Buckets.
type StorageConfig struct {
	URL        string        `env:"STORAGE_URL"`
	Buckets    []string      `env:"STORAGE_BUCKETS, default=parking-lots"`
	ServiceKey string        `env:"STORAGE_SERVICE_KEY"`
	Timeout    time.Duration `env:"STORAGE_TIMEOUT, default=10s"`
}

type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

func (c JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Validate rejects settings that are only safe on a developer machine.
func (c *Config) Validate() error {
	if !c.IsDevelopment() && (c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret) {
		return ErrDefaultJWTSecret
	}
	return nil
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper builds a Config from an arbitrary variable source.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
