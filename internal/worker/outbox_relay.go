package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"contexta/internal/domain"
	"contexta/internal/infra/metrics"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	relayTimeout        = 30 * time.Second
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// OutboxRelay moves outbox events to the event stream. Each tick drains the
// backlog before waiting for the next one.
type OutboxRelay struct {
	outbox       domain.OutboxRepository
	publisher    domain.EventPublisher
	logger       *slog.Logger
	pollInterval time.Duration

	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	backoff  time.Duration
}

func NewOutboxRelay(
	outbox domain.OutboxRepository,
	publisher domain.EventPublisher,
	pollInterval time.Duration,
	logger *slog.Logger,
) *OutboxRelay {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &OutboxRelay{
		outbox:       outbox,
		publisher:    publisher,
		logger:       logger,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (w *OutboxRelay) Start() {
	w.logger.Info("Starting OutboxRelay", "poll_interval", w.pollInterval)
	go w.run()
}

// Stop signals the loop and waits for the in-flight event to finish.
func (w *OutboxRelay) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping OutboxRelay")
		close(w.stopChan)
	})
	<-w.done
}

func (w *OutboxRelay) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if err := w.drain(); err != nil {
				w.backoff = nextBackoff(w.backoff)
				w.logger.Warn("OutboxRelay backing off", "backoff", w.backoff, "error", err)
				ticker.Reset(w.backoff)
			} else {
				w.backoff = 0
				ticker.Reset(w.pollInterval)
			}
		}
	}
}

// drain relays events until the outbox is empty, a step fails or Stop is
// called.
func (w *OutboxRelay) drain() error {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
		found, err := w.ProcessNext(ctx)
		cancel()
		if err != nil || !found {
			return err
		}

		select {
		case <-w.stopChan:
			return nil
		default:
		}
	}
}

// ProcessNext relays a single event. It reports whether an event was found;
// the error is non-nil when acquiring or publishing failed.
func (w *OutboxRelay) ProcessNext(ctx context.Context) (bool, error) {
	event, err := w.outbox.AcquireNext(ctx)
	if err != nil {
		w.logger.Error("Failed to acquire outbox event", "error", err)
		return false, err
	}
	if event == nil {
		return false, nil
	}

	messageID, pubErr := w.publisher.Publish(ctx, event)
	if pubErr != nil {
		metrics.RecordOutboxRelay(event.EventType, "failed")
		if err := w.outbox.MarkFailed(ctx, event.ID, pubErr.Error()); err != nil {
			w.logger.Error("Failed to mark outbox event failed", "event_id", event.ID, "error", err)
		}
		return true, pubErr
	}

	metrics.RecordOutboxRelay(event.EventType, "delivered")
	if err := w.outbox.MarkDelivered(ctx, event.ID); err != nil {
		// The event is already on the stream; consumers dedupe on event_id.
		w.logger.Error("Failed to mark outbox event delivered", "event_id", event.ID, "error", err)
		return true, err
	}

	w.logger.Debug("Relayed outbox event",
		"event_id", event.ID,
		"event_type", event.EventType,
		"message_id", messageID)
	return true, nil
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
