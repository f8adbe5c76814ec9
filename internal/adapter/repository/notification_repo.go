package repository

import (
	"context"
	"fmt"
	"time"

	"contexta/internal/apperror"
	"contexta/internal/domain"

	"github.com/google/uuid"
)

const notificationComponent = "NotificationRepository"

const notificationColumns = `id, user_id, kind, title, body, link, read_at, created_at`

type NotificationRepository struct {
	db PgxIface
}

func NewNotificationRepository(db PgxIface) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ListByUser reads one keyset page. created_at is stored at millisecond
// precision, which is what keeps the (created_at, id) comparison exact
// against a decoded cursor.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]*domain.Notification, error) {
	var query string
	var args []any

	if cursor == nil {
		query = `
			SELECT ` + notificationColumns + `
			FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		args = []any{userID, limit}
	} else {
		query = `
			SELECT ` + notificationColumns + `
			FROM notifications
			WHERE user_id = $1
			AND (created_at, id) < ($2, $3::uuid)
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		`
		args = []any{userID, cursor.CreatedAt, cursor.ID, limit}
	}

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseUnavailableError("repository", notificationComponent, "ListByUser", err, map[string]any{"user_id": userID})
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Body, &n.Link, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = domain.NotificationKind(kind)
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseUnavailableError("repository", notificationComponent, "ListByUser", err, map[string]any{"user_id": userID})
	}

	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read_at IS NULL
	`
	var count int
	if err := conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, apperror.NewDatabaseUnavailableError("repository", notificationComponent, "CountUnread", err, map[string]any{"user_id": userID})
	}
	return count, nil
}

// MarkRead keeps the first read time when called twice.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	query := `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, userID, time.Now().UTC())
	if err != nil {
		return apperror.NewDatabaseUnavailableError("repository", notificationComponent, "MarkRead", err, map[string]any{"id": id.String()})
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotificationNotFoundError("repository", notificationComponent, "MarkRead", map[string]any{"id": id.String()})
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE notifications
		SET read_at = $2
		WHERE user_id = $1 AND read_at IS NULL
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return 0, apperror.NewDatabaseUnavailableError("repository", notificationComponent, "MarkAllRead", err, map[string]any{"user_id": userID})
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, link, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		n.ID,
		n.UserID,
		string(n.Kind),
		n.Title,
		n.Body,
		n.Link,
		n.ReadAt,
		n.CreatedAt,
	)
	if err != nil {
		return apperror.NewDatabaseUnavailableError("repository", notificationComponent, "Create", err, map[string]any{"id": n.ID.String()})
	}
	return nil
}
