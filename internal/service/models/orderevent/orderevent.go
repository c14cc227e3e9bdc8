package orderevent

import (
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/google/uuid"
)

// Event types published to the broker.
const (
	TypeCreated       = "order.created"
	TypeStatusUpdated = "order.status_updated"
)

// Event is the payload written to the outbox and published to RabbitMQ.
type Event struct {
	EventID       string    `json:"eventId"`
	Type          string    `json:"type"`
	OrderID       int64     `json:"orderId"`
	Code          string    `json:"code,omitempty"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewCreated builds an order.created event.
func NewCreated(o order.Order, at time.Time) Event {
	return Event{
		EventID:       uuid.NewString(),
		Type:          TypeCreated,
		OrderID:       o.ID,
		Code:          o.Code,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		OccurredAt:    at,
	}
}

// NewStatusUpdated builds an order.status_updated event.
func NewStatusUpdated(orderID int64, status string, at time.Time) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       TypeStatusUpdated,
		OrderID:    orderID,
		Status:     status,
		OccurredAt: at,
	}
}
