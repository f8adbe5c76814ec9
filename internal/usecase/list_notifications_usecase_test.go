package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"contexta/internal/apperror"
	"contexta/internal/domain"
	"contexta/internal/mocks"
	"contexta/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func makeNotifications(n int, start time.Time) []*domain.Notification {
	out := make([]*domain.Notification, n)
	for i := range out {
		out[i] = &domain.Notification{
			ID:        uuid.New(),
			UserID:    "user-1",
			Kind:      domain.NotificationKindPageShared,
			Title:     "shared",
			CreatedAt: start.Add(-time.Duration(i) * time.Second),
		}
	}
	return out
}

type listFixture struct {
	repo  *mocks.MockNotificationRepository
	cache *mocks.MockUnreadCountCache
	uc    usecase.ListNotificationsUsecase
}

func newListFixture(t *testing.T, opts usecase.PaginationOptions) *listFixture {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockNotificationRepository(ctrl)
	cache := mocks.NewMockUnreadCountCache(ctrl)
	unread := usecase.NewGetUnreadCountUsecase(repo, cache)
	return &listFixture{
		repo:  repo,
		cache: cache,
		uc:    usecase.NewListNotificationsUsecase(repo, unread, opts, nil),
	}
}

func TestListNotifications_FirstPageHasMore(t *testing.T) {
	f := newListFixture(t, usecase.PaginationOptions{})
	rows := makeNotifications(3, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))

	f.repo.EXPECT().ListByUser(gomock.Any(), "user-1", nil, 3).Return(rows, nil)
	f.cache.EXPECT().Get("user-1").Return(4, true)

	page, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1", Limit: 2})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, domain.EncodeCursor(rows[1].CreatedAt, rows[1].ID.String()), page.NextCursor)
	assert.Equal(t, 4, page.UnreadCount)
}

func TestListNotifications_LastPage(t *testing.T) {
	f := newListFixture(t, usecase.PaginationOptions{})
	rows := makeNotifications(2, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))

	f.repo.EXPECT().ListByUser(gomock.Any(), "user-1", nil, 3).Return(rows, nil)
	f.cache.EXPECT().Get("user-1").Return(0, false)
	f.cache.EXPECT().Generation("user-1").Return(uint64(5))
	f.repo.EXPECT().CountUnread(gomock.Any(), "user-1").Return(2, nil)
	f.cache.EXPECT().Set("user-1", 2, uint64(5))

	page, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1", Limit: 2})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
	assert.Equal(t, 2, page.UnreadCount)
}

func TestListNotifications_DefaultLimit(t *testing.T) {
	f := newListFixture(t, usecase.PaginationOptions{DefaultLimit: 20, MaxLimit: 100})

	f.repo.EXPECT().ListByUser(gomock.Any(), "user-1", nil, 21).Return(nil, nil)
	f.cache.EXPECT().Get("user-1").Return(0, true)

	page, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestListNotifications_FollowsCursor(t *testing.T) {
	f := newListFixture(t, usecase.PaginationOptions{})
	id := uuid.New()
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	token := domain.EncodeCursor(at, id.String())

	f.repo.EXPECT().ListByUser(gomock.Any(), "user-1", gomock.Any(), 11).
		DoAndReturn(func(_ context.Context, _ string, c *domain.Cursor, _ int) ([]*domain.Notification, error) {
			require.NotNil(t, c)
			assert.True(t, c.CreatedAt.Equal(at))
			assert.Equal(t, id.String(), c.ID)
			return nil, nil
		})
	f.cache.EXPECT().Get("user-1").Return(0, true)

	_, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1", Cursor: token, Limit: 10})
	require.NoError(t, err)
}

func TestListNotifications_MalformedCursorRejected(t *testing.T) {
	tokens := []string{
		"not-a-cursor",
		":abc",
		"2024-01-15T10:30:00.000Z:",
		"2024-01-15T10:30:00.000Z:note-42",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			f := newListFixture(t, usecase.PaginationOptions{})

			_, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1", Cursor: token})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrInvalidCursor)

			appErr := apperror.AsAppContextError(err)
			assert.Equal(t, 400, appErr.HTTPStatusCode())
			assert.Equal(t, "invalid pagination parameter", appErr.Message)
		})
	}
}

func TestListNotifications_MalformedCursorRestarts(t *testing.T) {
	f := newListFixture(t, usecase.PaginationOptions{RestartOnInvalidCursor: true})

	f.repo.EXPECT().ListByUser(gomock.Any(), "user-1", nil, 21).Return(nil, nil)
	f.cache.EXPECT().Get("user-1").Return(1, true)

	page, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1", Cursor: "garbage"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.UnreadCount)
}

func TestListNotifications_InvalidLimit(t *testing.T) {
	for _, limit := range []int{-1, 101} {
		f := newListFixture(t, usecase.PaginationOptions{})

		_, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1", Limit: limit})
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
	}
}

func TestListNotifications_RepositoryError(t *testing.T) {
	f := newListFixture(t, usecase.PaginationOptions{})
	dbErr := apperror.NewDatabaseUnavailableError("repository", "NotificationRepository", "ListByUser", errors.New("down"), nil)

	f.repo.EXPECT().ListByUser(gomock.Any(), "user-1", nil, 21).Return(nil, dbErr)
	f.cache.EXPECT().Get("user-1").Return(0, true).AnyTimes()

	_, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, apperror.IsDatabaseError(err))
}

func TestListNotifications_MissingUser(t *testing.T) {
	f := newListFixture(t, usecase.PaginationOptions{})

	_, err := f.uc.Execute(context.Background(), usecase.ListNotificationsInput{})
	assert.True(t, apperror.IsValidationError(err))
}
