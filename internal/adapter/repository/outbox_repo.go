package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contexta/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// outboxLease is how long an acquired event stays claimed before another
	// relay may pick it up again.
	outboxLease = time.Minute
	// outboxMaxAttempts moves an event to failed after this many errors.
	outboxMaxAttempts = 10
)

type OutboxRepository struct {
	db PgxIface
}

func NewOutboxRepository(db PgxIface) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, event *domain.OutboxEvent) error {
	query := `
		INSERT INTO notification_outbox (id, aggregate_id, event_type, payload, status, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		event.ID,
		event.AggregateID,
		event.EventType,
		event.Payload,
		string(event.Status),
		event.Attempts,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}

// AcquireNext claims the oldest pending event. Rows claimed by a relay that
// died are reclaimed once their lease expires.
func (r *OutboxRepository) AcquireNext(ctx context.Context) (*domain.OutboxEvent, error) {
	query := `
		WITH next_event AS (
			SELECT id
			FROM notification_outbox
			WHERE status = 'pending'
			OR (status = 'processing' AND updated_at < $2)
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE notification_outbox
		SET status = 'processing', updated_at = $1
		FROM next_event
		WHERE notification_outbox.id = next_event.id
		RETURNING notification_outbox.id, notification_outbox.aggregate_id, notification_outbox.event_type,
			notification_outbox.payload, notification_outbox.status, notification_outbox.attempts,
			notification_outbox.last_error, notification_outbox.created_at, notification_outbox.updated_at
	`

	now := time.Now().UTC()
	var event domain.OutboxEvent
	var status string
	err := conn(ctx, r.db).QueryRow(ctx, query, now, now.Add(-outboxLease)).Scan(
		&event.ID,
		&event.AggregateID,
		&event.EventType,
		&event.Payload,
		&status,
		&event.Attempts,
		&event.LastError,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to acquire next outbox event: %w", err)
	}
	event.Status = domain.OutboxStatus(status)

	return &event, nil
}

func (r *OutboxRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notification_outbox
		SET status = 'delivered', updated_at = $2
		WHERE id = $1
	`
	if _, err := conn(ctx, r.db).Exec(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark outbox event delivered: %w", err)
	}
	return nil
}

// MarkFailed records the error and returns the event to pending until it has
// used up its attempts.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE notification_outbox
		SET attempts = attempts + 1,
			last_error = $2,
			status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END,
			updated_at = $4
		WHERE id = $1
	`
	if _, err := conn(ctx, r.db).Exec(ctx, query, id, reason, outboxMaxAttempts, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark outbox event failed: %w", err)
	}
	return nil
}
