package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			_ = os.Unsetenv(key)
			t.Cleanup(func() { _ = os.Setenv(key, value) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t,
		"ENV", "PORT", "DB_PASSWORD", "DB_PASSWORD_FILE", "PAGINATION_DEFAULT_LIMIT",
		"PAGINATION_MAX_LIMIT", "INVALID_CURSOR_POLICY", "UNREAD_CACHE_TTL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "OTEL_ENABLED", "DB_MAX_CONNS",
		"DB_MIN_CONNS", "UNREAD_CACHE_SIZE", "OUTBOX_POLL_INTERVAL",
	)

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "9300", cfg.Port)
	assert.Equal(t, "contexta_password", cfg.DBPassword)
	assert.Equal(t, 20, cfg.PaginationDefaultLimit)
	assert.Equal(t, 100, cfg.PaginationMaxLimit)
	assert.Equal(t, InvalidCursorReject, cfg.InvalidCursorPolicy)
	assert.Equal(t, 30*time.Second, cfg.UnreadCacheTTL)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.OTelEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "50")
	t.Setenv("INVALID_CURSOR_POLICY", "RESTART")
	t.Setenv("UNREAD_CACHE_TTL", "2m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 50, cfg.PaginationDefaultLimit)
	assert.Equal(t, InvalidCursorRestart, cfg.InvalidCursorPolicy)
	assert.Equal(t, 2*time.Minute, cfg.UnreadCacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("UNREAD_CACHE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 30*time.Second, cfg.UnreadCacheTTL)
}

func TestLoad_SecretFromFile(t *testing.T) {
	clearEnv(t, "BACKEND_TOKEN_SECRET")
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("s3cret\n"), 0o600))
	t.Setenv("BACKEND_TOKEN_SECRET_FILE", path)

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.BackendTokenSecret)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:                    "development",
			Port:                   "9300",
			DBMaxConns:             10,
			DBMinConns:             2,
			PaginationDefaultLimit: 20,
			PaginationMaxLimit:     100,
			InvalidCursorPolicy:    InvalidCursorReject,
			UnreadCacheSize:        100,
			UnreadCacheTTL:         time.Second,
			RateLimitRPS:           1,
			RateLimitBurst:         1,
			OutboxPollInterval:     time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "0" }, wantErr: "port must be between"},
		{name: "non-numeric port", mutate: func(c *Config) { c.Port = "http" }, wantErr: "port must be between"},
		{name: "min conns above max", mutate: func(c *Config) { c.DBMinConns = 11 }, wantErr: "db min connections"},
		{name: "default above max", mutate: func(c *Config) { c.PaginationDefaultLimit = 101 }, wantErr: "pagination default limit"},
		{name: "unknown cursor policy", mutate: func(c *Config) { c.InvalidCursorPolicy = "ignore" }, wantErr: "invalid cursor policy"},
		{name: "zero cache ttl", mutate: func(c *Config) { c.UnreadCacheTTL = 0 }, wantErr: "unread cache ttl"},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimitBurst = 0 }, wantErr: "rate limit"},
		{name: "production without secrets", mutate: func(c *Config) { c.Env = "production" }, wantErr: "BACKEND_TOKEN_SECRET is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DSN())
}
