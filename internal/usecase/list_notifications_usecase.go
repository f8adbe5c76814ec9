package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"contexta/internal/apperror"
	"contexta/internal/domain"
	"contexta/internal/infra/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PaginationOptions controls page sizes and what a bad cursor does.
type PaginationOptions struct {
	DefaultLimit int
	MaxLimit     int
	// RestartOnInvalidCursor serves the first page instead of rejecting a
	// malformed cursor.
	RestartOnInvalidCursor bool
}

func (o PaginationOptions) withDefaults() PaginationOptions {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 20
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = 100
	}
	if o.DefaultLimit > o.MaxLimit {
		o.DefaultLimit = o.MaxLimit
	}
	return o
}

type ListNotificationsInput struct {
	UserID string
	Cursor string
	Limit  int
}

type ListNotificationsUsecase interface {
	Execute(ctx context.Context, input ListNotificationsInput) (*domain.NotificationPage, error)
}

type listNotificationsUsecase struct {
	repo        domain.NotificationRepository
	unreadCount GetUnreadCountUsecase
	opts        PaginationOptions
	logger      *slog.Logger
}

func NewListNotificationsUsecase(
	repo domain.NotificationRepository,
	unreadCount GetUnreadCountUsecase,
	opts PaginationOptions,
	logger *slog.Logger,
) ListNotificationsUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &listNotificationsUsecase{
		repo:        repo,
		unreadCount: unreadCount,
		opts:        opts.withDefaults(),
		logger:      logger,
	}
}

func (u *listNotificationsUsecase) Execute(ctx context.Context, input ListNotificationsInput) (*domain.NotificationPage, error) {
	if input.UserID == "" {
		return nil, apperror.NewInvalidInputError("usecase", "ListNotificationsUsecase", "Execute", "user id is required", nil)
	}

	limit := input.Limit
	if limit == 0 {
		limit = u.opts.DefaultLimit
	}
	if limit < 0 || limit > u.opts.MaxLimit {
		return nil, apperror.NewInvalidInputError("usecase", "ListNotificationsUsecase", "Execute",
			fmt.Sprintf("limit must be between 1 and %d", u.opts.MaxLimit),
			map[string]any{"limit": input.Limit})
	}

	cursor, err := u.resolveCursor(ctx, input)
	if err != nil {
		return nil, err
	}

	var (
		rows   []*domain.Notification
		unread int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = u.repo.ListByUser(gctx, input.UserID, cursor, limit+1)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = u.unreadCount.Execute(gctx, input.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &domain.NotificationPage{UnreadCount: unread}
	if len(rows) > limit {
		rows = rows[:limit]
		page.HasMore = true
	}
	page.Items = rows
	if page.HasMore {
		page.NextCursor = rows[len(rows)-1].Cursor().Encode()
	}

	return page, nil
}

// resolveCursor returns nil for the first page. A token that does not decode,
// or whose id is not a notification id, is malformed.
func (u *listNotificationsUsecase) resolveCursor(ctx context.Context, input ListNotificationsInput) (*domain.Cursor, error) {
	if input.Cursor == "" {
		return nil, nil
	}

	cursor, ok := domain.DecodeCursor(input.Cursor)
	if ok {
		id, err := uuid.Parse(cursor.ID)
		if err == nil {
			metrics.RecordCursorDecode(ctx, "valid")
			cursor.ID = id.String()
			return &cursor, nil
		}
	}

	metrics.RecordCursorDecode(ctx, "malformed")
	if u.opts.RestartOnInvalidCursor {
		u.logger.WarnContext(ctx, "malformed cursor, serving first page",
			"user_id", input.UserID,
			"cursor_len", len(input.Cursor))
		return nil, nil
	}
	return nil, apperror.NewInvalidCursorError("usecase", "ListNotificationsUsecase", "Execute")
}
