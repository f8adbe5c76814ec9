package di

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"contexta/internal/adapter/publisher"
	"contexta/internal/infra/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplicationComponents(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	mr := miniredis.RunT(t)
	pub := publisher.NewRedisPublisher(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer pub.Close()

	cfg := &config.Config{
		PaginationDefaultLimit: 20,
		PaginationMaxLimit:     100,
		InvalidCursorPolicy:    config.InvalidCursorRestart,
		UnreadCacheSize:        10,
		UnreadCacheTTL:         time.Second,
		RateLimitRPS:           5,
		RateLimitBurst:         5,
		BackendTokenSecret:     "s",
		BackendTokenIssuer:     "iss",
		BackendTokenAudience:   "aud",
		ServiceToken:           "tok",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewApplicationComponents(cfg, pool, pub, log)
	require.NoError(t, err)

	assert.NotNil(t, c.Handler)
	assert.NotNil(t, c.Relay)
	assert.NotNil(t, c.ListUsecase)
	assert.NotNil(t, c.CreateUsecase)
	assert.Same(t, pub, c.Publisher)

	rc := c.RouteConfig(cfg, nil, log)
	assert.Equal(t, "s", rc.JWT.Secret)
	assert.Equal(t, "iss", rc.JWT.Issuer)
	assert.Equal(t, "aud", rc.JWT.Audience)
	assert.Equal(t, "tok", rc.ServiceToken)
	assert.Same(t, c.RateLimiter, rc.RateLimiter)
}
