package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/orderevent"
)

// DefaultMaxRetries bounds delivery attempts of a single message.
const DefaultMaxRetries = 10

// OutboxMessage represents an order event waiting to be published to RabbitMQ.
type OutboxMessage struct {
	ID           int64
	MessageID    string
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// FromEvent wraps an order event into a message routed to queue through the default exchange.
func FromEvent(ev orderevent.Event, queue string) (OutboxMessage, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return OutboxMessage{
		MessageID:   ev.EventID,
		QueueName:   queue,
		RoutingKey:  queue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  DefaultMaxRetries,
		CreatedAt:   ev.OccurredAt,
		UpdatedAt:   ev.OccurredAt,
		NextRetryAt: ev.OccurredAt,
	}, nil
}
