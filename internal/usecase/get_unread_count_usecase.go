package usecase

import (
	"context"

	"contexta/internal/apperror"
	"contexta/internal/domain"
)

type GetUnreadCountUsecase interface {
	Execute(ctx context.Context, userID string) (int, error)
}

type getUnreadCountUsecase struct {
	repo  domain.NotificationRepository
	cache domain.UnreadCountCache
}

// NewGetUnreadCountUsecase reads through cache when it is non-nil.
func NewGetUnreadCountUsecase(repo domain.NotificationRepository, cache domain.UnreadCountCache) GetUnreadCountUsecase {
	return &getUnreadCountUsecase{repo: repo, cache: cache}
}

func (u *getUnreadCountUsecase) Execute(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperror.NewInvalidInputError("usecase", "GetUnreadCountUsecase", "Execute", "user id is required", nil)
	}

	if u.cache != nil {
		if count, ok := u.cache.Get(userID); ok {
			return count, nil
		}
	}

	var generation uint64
	if u.cache != nil {
		generation = u.cache.Generation(userID)
	}

	count, err := u.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if u.cache != nil {
		u.cache.Set(userID, count, generation)
	}
	return count, nil
}
