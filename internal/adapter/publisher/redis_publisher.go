// Package publisher relays outbox events to Redis Streams.
package publisher

import (
	"context"
	"errors"
	"fmt"

	"contexta/internal/domain"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "contexta:notifications"

// RedisPublisher implements domain.EventPublisher with XADD.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{client: client, stream: stream}
}

// NewRedisPublisherWithURL creates a publisher from a redis:// URL.
func NewRedisPublisherWithURL(url, stream string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisPublisher(redis.NewClient(opts), stream), nil
}

// Publish appends the event and returns the stream message ID.
func (p *RedisPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) (string, error) {
	if event == nil {
		return "", errors.New("event is nil")
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: eventToValues(event),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return id, nil
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func eventToValues(event *domain.OutboxEvent) map[string]any {
	values := map[string]any{
		"event_id":     event.ID.String(),
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID.String(),
		"created_at":   domain.FormatTimestamp(event.CreatedAt),
	}
	if len(event.Payload) > 0 {
		values["payload"] = string(event.Payload)
	}
	return values
}
