package domain

import (
	"context"

	"github.com/google/uuid"
)

//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

// NotificationRepository persists notifications. ListByUser returns at most
// limit rows ordered by created_at DESC, id DESC, strictly after cursor when
// one is given.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, n *Notification) error
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event *OutboxEvent) error
	// AcquireNext locks and returns the oldest pending event, or nil when
	// there is none.
	AcquireNext(ctx context.Context) (*OutboxEvent, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// TransactionManager runs fn in a database transaction carried by ctx.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event *OutboxEvent) (string, error)
}

// UnreadCountCache stores per-user unread counts. Readers take Generation
// before loading a count and hand it back to Set, which ignores the count if
// Invalidate ran in between.
type UnreadCountCache interface {
	Get(userID string) (int, bool)
	Generation(userID string) uint64
	Set(userID string, count int, generation uint64)
	Invalidate(userID string)
}
