package di

import (
	"fmt"
	"log/slog"

	"contexta/internal/adapter/cache"
	"contexta/internal/adapter/notification_http"
	"contexta/internal/adapter/publisher"
	"contexta/internal/adapter/repository"
	"contexta/internal/domain"
	"contexta/internal/infra/config"
	"contexta/internal/usecase"
	"contexta/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	NotificationRepo domain.NotificationRepository
	OutboxRepo       domain.OutboxRepository

	UnreadCache *cache.UnreadCountCache
	Publisher   *publisher.RedisPublisher

	// Usecases
	ListUsecase        usecase.ListNotificationsUsecase
	UnreadCountUsecase usecase.GetUnreadCountUsecase
	MarkReadUsecase    usecase.MarkNotificationReadUsecase
	MarkAllReadUsecase usecase.MarkAllNotificationsReadUsecase
	CreateUsecase      usecase.CreateNotificationUsecase

	Handler     *notification_http.Handler
	RateLimiter *notification_http.RateLimiter

	Relay *worker.OutboxRelay
}

// NewApplicationComponents wires all dependencies from config, the database
// pool and the stream publisher.
func NewApplicationComponents(
	cfg *config.Config,
	db repository.PgxIface,
	pub *publisher.RedisPublisher,
	log *slog.Logger,
) (*ApplicationComponents, error) {
	notificationRepo := repository.NewNotificationRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	txManager := repository.NewPostgresTransactionManager(db)

	unreadCache := cache.NewUnreadCountCache(cfg.UnreadCacheSize, cfg.UnreadCacheTTL)

	pagination := usecase.PaginationOptions{
		DefaultLimit:           cfg.PaginationDefaultLimit,
		MaxLimit:               cfg.PaginationMaxLimit,
		RestartOnInvalidCursor: cfg.InvalidCursorPolicy == config.InvalidCursorRestart,
	}

	unreadCountUsecase := usecase.NewGetUnreadCountUsecase(notificationRepo, unreadCache)
	listUsecase := usecase.NewListNotificationsUsecase(notificationRepo, unreadCountUsecase, pagination, log)
	markReadUsecase := usecase.NewMarkNotificationReadUsecase(notificationRepo, unreadCache)
	markAllReadUsecase := usecase.NewMarkAllNotificationsReadUsecase(notificationRepo, unreadCache)
	createUsecase := usecase.NewCreateNotificationUsecase(notificationRepo, outboxRepo, txManager, unreadCache, log)

	limiter, err := notification_http.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	handler := notification_http.NewHandler(
		listUsecase,
		unreadCountUsecase,
		markReadUsecase,
		markAllReadUsecase,
		createUsecase,
		log,
	)

	log.Info("pagination configured",
		slog.Int("default_limit", cfg.PaginationDefaultLimit),
		slog.Int("max_limit", cfg.PaginationMaxLimit),
		slog.String("invalid_cursor_policy", string(cfg.InvalidCursorPolicy)))

	return &ApplicationComponents{
		NotificationRepo:   notificationRepo,
		OutboxRepo:         outboxRepo,
		UnreadCache:        unreadCache,
		Publisher:          pub,
		ListUsecase:        listUsecase,
		UnreadCountUsecase: unreadCountUsecase,
		MarkReadUsecase:    markReadUsecase,
		MarkAllReadUsecase: markAllReadUsecase,
		CreateUsecase:      createUsecase,
		Handler:            handler,
		RateLimiter:        limiter,
		Relay:              worker.NewOutboxRelay(outboxRepo, pub, cfg.OutboxPollInterval, log),
	}, nil
}

// RouteConfig returns the HTTP wiring for these components.
func (c *ApplicationComponents) RouteConfig(cfg *config.Config, readiness map[string]notification_http.Pinger, log *slog.Logger) notification_http.RouteConfig {
	return notification_http.RouteConfig{
		JWT: notification_http.JWTConfig{
			Secret:   cfg.BackendTokenSecret,
			Issuer:   cfg.BackendTokenIssuer,
			Audience: cfg.BackendTokenAudience,
		},
		ServiceToken: cfg.ServiceToken,
		RateLimiter:  c.RateLimiter,
		Readiness:    readiness,
		Logger:       log,
	}
}
