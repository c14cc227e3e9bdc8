package ioutboxrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/outbox"
)

// IOutboxWriter records order events next to the order writes that produced them.
type IOutboxWriter interface {
	Insert(ctx context.Context, msg outbox.OutboxMessage) error
}

// IOutboxRelay is the delivery side of the outbox, driven by the outbox worker.
type IOutboxRelay interface {
	// GetPendingMessages returns due messages that still have attempts left, oldest first.
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error)

	// Delete drops a delivered message.
	Delete(ctx context.Context, id int64) error

	// UpdateRetry records a failed attempt and when to try again.
	UpdateRetry(
		ctx context.Context,
		id int64,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}

// IOutboxRepository is the full outbox table.
type IOutboxRepository interface {
	IOutboxWriter
	IOutboxRelay
}
