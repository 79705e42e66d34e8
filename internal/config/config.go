// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Lock backends.
const (
	LockNone   = "none"
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config holds every setting of the server process.
type Config struct {
	Port int `env:"PORT,default=8080"`

	DBDriver    string `env:"DB_DRIVER,default=sqlite"`
	DBPath      string `env:"DB_PATH,default=./data/library.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	LockBackend string        `env:"LOCK_BACKEND,default=memory"`
	RedisAddr   string        `env:"REDIS_ADDR,default=localhost:6379"`
	LockTTL     time.Duration `env:"LOCK_TTL,default=10s"`
	LockWait    time.Duration `env:"LOCK_WAIT,default=5s"`

	// AuthSecret signs librarian tokens. Empty disables authorization.
	AuthSecret string        `env:"AUTH_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,default=24h"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	Seed       bool   `env:"SEED,default=false"`
	CORSOrigin string `env:"CORS_ORIGIN,default=*"`
}

// Load reads files (default ".env") into the environment when they exist and then
// decodes the environment. Variables already set take precedence over the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.LockBackend {
	case LockNone, LockMemory:
	case LockRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis lock backend")
		}
		if c.LockTTL <= 0 {
			return errors.New("LOCK_TTL must be positive")
		}
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.LockBackend)
	}

	if c.LockWait <= 0 {
		return errors.New("LOCK_WAIT must be positive")
	}
	if c.AuthSecret != "" && c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// AuthEnabled reports whether mutating operations require a librarian token.
func (c *Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
