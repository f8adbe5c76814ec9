package usecase

import (
	"context"

	"contexta/internal/apperror"
	"contexta/internal/domain"

	"github.com/google/uuid"
)

type MarkNotificationReadUsecase interface {
	Execute(ctx context.Context, userID string, id uuid.UUID) error
}

type markNotificationReadUsecase struct {
	repo  domain.NotificationRepository
	cache domain.UnreadCountCache
}

func NewMarkNotificationReadUsecase(repo domain.NotificationRepository, cache domain.UnreadCountCache) MarkNotificationReadUsecase {
	return &markNotificationReadUsecase{repo: repo, cache: cache}
}

func (u *markNotificationReadUsecase) Execute(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" || id == uuid.Nil {
		return apperror.NewInvalidInputError("usecase", "MarkNotificationReadUsecase", "Execute", "user id and notification id are required", nil)
	}

	if err := u.repo.MarkRead(ctx, userID, id); err != nil {
		return err
	}

	if u.cache != nil {
		u.cache.Invalidate(userID)
	}
	return nil
}

type MarkAllNotificationsReadUsecase interface {
	Execute(ctx context.Context, userID string) (int64, error)
}

type markAllNotificationsReadUsecase struct {
	repo  domain.NotificationRepository
	cache domain.UnreadCountCache
}

func NewMarkAllNotificationsReadUsecase(repo domain.NotificationRepository, cache domain.UnreadCountCache) MarkAllNotificationsReadUsecase {
	return &markAllNotificationsReadUsecase{repo: repo, cache: cache}
}

// Execute returns how many notifications changed state.
func (u *markAllNotificationsReadUsecase) Execute(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperror.NewInvalidInputError("usecase", "MarkAllNotificationsReadUsecase", "Execute", "user id is required", nil)
	}

	n, err := u.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	if u.cache != nil {
		u.cache.Invalidate(userID)
	}
	return n, nil
}
