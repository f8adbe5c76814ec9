package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"

	"contexta/internal/adapter/notification_http"
	"contexta/internal/adapter/publisher"
	"contexta/internal/di"
	"contexta/internal/infra"
	"contexta/internal/infra/config"
	"contexta/internal/infra/logger"
	contextaotel "contexta/internal/infra/otel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. Telemetry and logger
	otelCfg := contextaotel.ConfigFromEnv()
	otelCfg.Enabled = otelCfg.Enabled || cfg.OTelEnabled
	shutdownOTel, err := contextaotel.InitProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	log := logger.NewWithOTel(otelCfg.Enabled)
	slog.SetDefault(log)

	// 3. Database
	pool, err := infra.NewPostgresDB(ctx, cfg.DSN(), infra.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	// 4. Event stream
	pub, err := publisher.NewRedisPublisherWithURL(cfg.RedisURL, cfg.NotificationStream)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer pub.Close()

	// 5. Components
	components, err := di.NewApplicationComponents(cfg, pool, pub, log)
	if err != nil {
		return err
	}

	// 6. HTTP
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = notification_http.ErrorHandler(log)
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(otelCfg.ServiceName))
	e.Use(notification_http.RequestID())
	e.Use(notification_http.RequestMetrics())

	notification_http.RegisterRoutes(e, components.Handler, components.RouteConfig(cfg, map[string]notification_http.Pinger{
		"postgres": pool,
		"redis":    pub,
	}, log))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// 7. Run server and relay until a signal arrives
	components.Relay.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("Starting server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := e.Shutdown(shutdownCtx)
		components.Relay.Stop()
		return err
	})

	return g.Wait()
}
