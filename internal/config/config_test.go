package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"PORT", "DB_DRIVER", "DB_PATH", "POSTGRES_DSN", "LOCK_BACKEND", "REDIS_ADDR",
	"LOCK_TTL", "LOCK_WAIT", "AUTH_SECRET", "TOKEN_TTL", "LOG_LEVEL", "LOG_FORMAT",
	"SEED", "CORS_ORIGIN",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "./data/library.db", cfg.DBPath)
	assert.Equal(t, LockMemory, cfg.LockBackend)
	assert.Equal(t, 5*time.Second, cfg.LockWait)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.False(t, cfg.Seed)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/library")
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("LOCK_WAIT", "250ms")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("SEED", "true")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, LockRedis, cfg.LockBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.LockWait)
	assert.True(t, cfg.AuthEnabled())
	assert.True(t, cfg.Seed)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("DB_DRIVER=memory\nLOG_FORMAT=json\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DB_DRIVER")
		os.Unsetenv("LOG_FORMAT")
	})

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:        8080,
			DBDriver:    DriverSQLite,
			DBPath:      "library.db",
			LockBackend: LockMemory,
			LockTTL:     time.Second,
			LockWait:    time.Second,
			TokenTTL:    time.Hour,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.DBDriver = DriverPostgres }},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }},
		{"unknown lock backend", func(c *Config) { c.LockBackend = "etcd" }},
		{"redis without addr", func(c *Config) { c.LockBackend = LockRedis }},
		{"zero lock wait", func(c *Config) { c.LockWait = 0 }},
		{"auth without ttl", func(c *Config) { c.AuthSecret = "x"; c.TokenTTL = 0 }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
