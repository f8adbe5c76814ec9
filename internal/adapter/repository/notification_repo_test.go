package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"contexta/internal/apperror"
	"contexta/internal/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationCols = []string{"id", "user_id", "kind", "title", "body", "link", "read_at", "created_at"}

func TestNotificationRepository_ListByUser_FirstPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)

	id1 := uuid.New()
	id2 := uuid.New()
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	readAt := created.Add(time.Minute)

	rows := pgxmock.NewRows(notificationCols).
		AddRow(id1, "user-1", "page_shared", "Shared", "", "/p/1", (*time.Time)(nil), created).
		AddRow(id2, "user-1", "comment_added", "Comment", "hi", "/p/2", &readAt, created.Add(-time.Second))

	mock.ExpectQuery("SELECT id, user_id, kind").
		WithArgs("user-1", 3).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "user-1", nil, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, domain.NotificationKindPageShared, got[0].Kind)
	assert.Nil(t, got[0].ReadAt)
	assert.Equal(t, domain.NotificationKindCommentAdded, got[1].Kind)
	require.NotNil(t, got[1].ReadAt)
	assert.True(t, got[1].ReadAt.Equal(readAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListByUser_WithCursor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)

	cursor := &domain.Cursor{
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		ID:        "0b6c2f0e-7d0a-4a53-9a53-3c1d5b1f6c11",
	}

	mock.ExpectQuery(`\(created_at, id\) < \(\$2, \$3::uuid\)`).
		WithArgs("user-1", cursor.CreatedAt, cursor.ID, 21).
		WillReturnRows(pgxmock.NewRows(notificationCols))

	got, err := repo.ListByUser(context.Background(), "user-1", cursor, 21)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListByUser_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)

	mock.ExpectQuery("SELECT id, user_id, kind").
		WithArgs("user-1", 5).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.ListByUser(context.Background(), "user-1", nil, 5)
	require.Error(t, err)
	assert.True(t, apperror.IsDatabaseError(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  bool
	}{
		{name: "marks row", affected: 1},
		{name: "missing row", affected: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewNotificationRepository(mock)
			id := uuid.New()

			mock.ExpectExec("UPDATE notifications").
				WithArgs(id, "user-1", pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err = repo.MarkRead(context.Background(), "user-1", id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsNotFound(err))
			} else {
				require.NoError(t, err)
			}

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)

	mock.ExpectExec("UPDATE notifications").
		WithArgs("user-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	n, err := repo.MarkAllRead(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_CreateInsideTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)
	tm := NewPostgresTransactionManager(mock)

	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    "user-1",
		Kind:      domain.NotificationKindSystem,
		Title:     "Maintenance",
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(n.ID, n.UserID, "system", n.Title, n.Body, n.Link, pgxmock.AnyArg(), n.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NotNil(t, ExtractTx(ctx))
		return repo.Create(ctx, n)
	})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
