package notification_http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"contexta/internal/apperror"
	"contexta/internal/infra/logger"
	"contexta/internal/infra/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader    = "X-Request-ID"
	backendTokenHeader = "X-Contexta-Token"
	serviceTokenHeader = "X-Service-Token"

	rateLimiterEntries = 10000
)

var (
	errMissingToken = errors.New("missing backend token")
	errMissingSub   = errors.New("token has no subject")
)

// RequestID propagates or mints X-Request-ID and stores it for the logger.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(requestIDHeader, requestID)

			ctx := logger.WithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated user set by JWTAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(logger.UserIDKey).(string)
	return userID, ok && userID != ""
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// JWTAuth validates the backend token issued by the auth service. The user id
// is the sub claim.
func JWTAuth(cfg JWTConfig, log *slog.Logger) echo.MiddlewareFunc {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 && log != nil {
		log.Warn("BACKEND_TOKEN_SECRET not set, JWT auth will deny all requests")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := validateToken(parser, secret, c.Request().Header.Get(backendTokenHeader))
			if err != nil {
				if log != nil {
					log.Debug("JWT validation failed", "path", c.Path(), "error", err)
				}
				return apperror.NewUnauthorizedError("adapter", "JWTAuth", "validate", err)
			}

			ctx := logger.WithUserID(c.Request().Context(), userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func validateToken(parser *jwt.Parser, secret []byte, tokenStr string) (string, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return "", errMissingToken
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errMissingSub
	}
	return claims.Subject, nil
}

// ServiceToken guards internal endpoints with a shared secret.
func ServiceToken(token string, log *slog.Logger) echo.MiddlewareFunc {
	if token == "" && log != nil {
		log.Warn("SERVICE_TOKEN not set, internal endpoints will deny all requests")
	}
	expected := []byte(token)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := []byte(strings.TrimSpace(c.Request().Header.Get(serviceTokenHeader)))
			if len(expected) == 0 || len(got) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				if log != nil {
					log.Warn("service auth failed",
						"path", c.Request().URL.Path,
						"remote_addr", c.RealIP())
				}
				return apperror.NewUnauthorizedError("adapter", "ServiceToken", "validate", nil)
			}
			return next(c)
		}
	}
}

// RateLimiter keeps one token bucket per user, falling back to the client IP
// before authentication. Idle buckets fall out of the LRU.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) (*RateLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](rateLimiterEntries)
	if err != nil {
		return nil, fmt.Errorf("create limiter cache: %w", err)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiters: cache, rps: rate.Limit(rps), burst: burst}, nil
}

func (l *RateLimiter) Allow(key string) bool {
	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		if prev, found, _ := l.limiters.PeekOrAdd(key, limiter); found {
			limiter = prev
		}
	}
	return limiter.Allow()
}

func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := UserIDFromContext(c.Request().Context())
			if !ok {
				key = "ip:" + c.RealIP()
			}
			if !l.Allow(key) {
				return apperror.NewAppContextError(apperror.CodeRateLimit, "too many requests", "adapter", "RateLimiter", "Allow", nil, nil)
			}
			return next(c)
		}
	}
}

// RequestMetrics records count and latency by route template.
func RequestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status, _ = errorResponse(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(c.Request().Method, route, strconv.Itoa(status), time.Since(start).Seconds())
			return err
		}
	}
}
