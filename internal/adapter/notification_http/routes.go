package notification_http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouteConfig struct {
	JWT          JWTConfig
	ServiceToken string
	RateLimiter  *RateLimiter
	Readiness    map[string]Pinger
	Logger       *slog.Logger
}

func RegisterRoutes(e *echo.Echo, h *Handler, cfg RouteConfig) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", readyHandler(cfg.Readiness))

	v1 := e.Group("/v1/notifications", JWTAuth(cfg.JWT, cfg.Logger))
	if cfg.RateLimiter != nil {
		v1.Use(cfg.RateLimiter.Middleware())
	}
	v1.GET("", h.ListNotifications)
	v1.GET("/unread-count", h.GetUnreadCount)
	v1.POST("/read-all", h.MarkAllRead)
	v1.POST("/:id/read", h.MarkRead)

	internal := e.Group("/internal", ServiceToken(cfg.ServiceToken, cfg.Logger))
	internal.POST("/notifications", h.CreateNotification)
}

func readyHandler(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps))
		status := http.StatusOK
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		return c.JSON(status, map[string]any{"checks": checks})
	}
}
