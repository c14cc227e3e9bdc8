package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/ordering/internal/service/models/outbox"
	"github.com/spf13/viper"
)

// publisher delivers outbox messages to the broker.
type publisher interface {
	Publish(ctx context.Context, msg outbox.OutboxMessage) error
}

// Worker relays order events from the outbox table to RabbitMQ.
type Worker struct {
	relay         ioutboxrepo.IOutboxRelay
	publisher     publisher
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	now           func() time.Time
	stopCh        chan struct{}
}

// NewWorker creates a new outbox worker.
func NewWorker(relay ioutboxrepo.IOutboxRelay, publisher publisher) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	return &Worker{
		relay:         relay,
		publisher:     publisher,
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start polls the outbox until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// backoff is the delay before attempt number retryCount: retryInterval * 2^retryCount.
func (w *Worker) backoff(retryCount int) time.Duration {
	return time.Duration(math.Pow(2, float64(retryCount))) * w.retryInterval
}

// processMessages publishes one batch of due messages.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.relay.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		if ctx.Err() != nil {
			return
		}

		if err := w.publisher.Publish(ctx, msg); err != nil {
			w.scheduleRetry(ctx, msg, err)

			continue
		}

		if err := w.relay.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"message_id", msg.MessageID,
				"error", err,
			)

			continue
		}

		slog.Debug("Order event published", "outbox_id", msg.ID, "message_id", msg.MessageID, "queue", msg.RoutingKey)
	}
}

func (w *Worker) scheduleRetry(ctx context.Context, msg outbox.OutboxMessage, publishErr error) {
	newRetryCount := msg.RetryCount + 1
	nextRetryAt := w.now().Add(w.backoff(newRetryCount))

	if newRetryCount >= msg.MaxRetries {
		slog.Error("Outbox message exhausted its retries and will not be published",
			"outbox_id", msg.ID,
			"message_id", msg.MessageID,
			"retry_count", newRetryCount,
			"error", publishErr,
		)
	} else {
		slog.Warn("Failed to publish message from outbox, will retry",
			"outbox_id", msg.ID,
			"retry_count", newRetryCount,
			"next_retry", nextRetryAt,
			"error", publishErr,
		)
	}

	if err := w.relay.UpdateRetry(ctx, msg.ID, newRetryCount, publishErr.Error(), nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
