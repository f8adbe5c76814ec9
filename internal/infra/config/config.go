package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// InvalidCursorPolicy decides what the list endpoint does with a cursor that
// fails to decode.
type InvalidCursorPolicy string

const (
	InvalidCursorReject  InvalidCursorPolicy = "reject"
	InvalidCursorRestart InvalidCursorPolicy = "restart"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int
	DBMinConns int

	RedisURL           string
	NotificationStream string

	BackendTokenSecret   string
	BackendTokenIssuer   string
	BackendTokenAudience string
	ServiceToken         string

	PaginationDefaultLimit int
	PaginationMaxLimit     int
	InvalidCursorPolicy    InvalidCursorPolicy

	UnreadCacheSize int
	UnreadCacheTTL  time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	OutboxPollInterval time.Duration
	ShutdownTimeout    time.Duration

	OTelEnabled bool
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9300"),

		DBHost:     getEnv("DB_HOST", "contexta-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "contexta_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "contexta_password"),
		DBName:     getEnv("DB_NAME", "contexta"),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns: getEnvInt("DB_MIN_CONNS", 2),

		RedisURL:           getEnv("REDIS_URL", "redis://redis-streams:6379/0"),
		NotificationStream: getEnv("NOTIFICATION_STREAM", "contexta:notifications"),

		BackendTokenSecret:   getSecret("BACKEND_TOKEN_SECRET", "BACKEND_TOKEN_SECRET_FILE", ""),
		BackendTokenIssuer:   getEnv("BACKEND_TOKEN_ISSUER", "contexta-auth"),
		BackendTokenAudience: getEnv("BACKEND_TOKEN_AUDIENCE", "contexta-backend"),
		ServiceToken:         getSecret("SERVICE_TOKEN", "SERVICE_TOKEN_FILE", ""),

		PaginationDefaultLimit: getEnvInt("PAGINATION_DEFAULT_LIMIT", 20),
		PaginationMaxLimit:     getEnvInt("PAGINATION_MAX_LIMIT", 100),
		InvalidCursorPolicy:    InvalidCursorPolicy(strings.ToLower(getEnv("INVALID_CURSOR_POLICY", string(InvalidCursorReject)))),

		UnreadCacheSize: getEnvInt("UNREAD_CACHE_SIZE", 10000),
		UnreadCacheTTL:  getEnvDuration("UNREAD_CACHE_TTL", 30*time.Second),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		OutboxPollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		OTelEnabled: getEnv("OTEL_ENABLED", "false") == "true",
	}
}

// DSN builds the pgx connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %q", c.Port))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, fmt.Errorf("db max connections must be at least 1, got %d", c.DBMaxConns))
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("db min connections must be between 0 and %d, got %d", c.DBMaxConns, c.DBMinConns))
	}
	if c.PaginationMaxLimit < 1 {
		errs = append(errs, fmt.Errorf("pagination max limit must be positive, got %d", c.PaginationMaxLimit))
	}
	if c.PaginationDefaultLimit < 1 || c.PaginationDefaultLimit > c.PaginationMaxLimit {
		errs = append(errs, fmt.Errorf("pagination default limit must be between 1 and %d, got %d", c.PaginationMaxLimit, c.PaginationDefaultLimit))
	}
	switch c.InvalidCursorPolicy {
	case InvalidCursorReject, InvalidCursorRestart:
	default:
		errs = append(errs, fmt.Errorf("invalid cursor policy must be %q or %q, got %q", InvalidCursorReject, InvalidCursorRestart, c.InvalidCursorPolicy))
	}
	if c.UnreadCacheSize < 1 {
		errs = append(errs, fmt.Errorf("unread cache size must be positive, got %d", c.UnreadCacheSize))
	}
	if c.UnreadCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("unread cache ttl must be positive, got %v", c.UnreadCacheTTL))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("rate limit must be positive, got rps=%v burst=%d", c.RateLimitRPS, c.RateLimitBurst))
	}
	if c.OutboxPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("outbox poll interval must be positive, got %v", c.OutboxPollInterval))
	}
	if c.Env == "production" {
		if c.BackendTokenSecret == "" {
			errs = append(errs, errors.New("BACKEND_TOKEN_SECRET is required in production"))
		}
		if c.ServiceToken == "" {
			errs = append(errs, errors.New("SERVICE_TOKEN is required in production"))
		}
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret prefers the variable itself and falls back to the file named by
// fileEnvKey (Docker secrets).
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
