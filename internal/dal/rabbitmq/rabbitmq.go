package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const defaultHost = "rabbitmq"

// Client represents a RabbitMQ client.
// amqp channels are not safe for concurrent publishing, so Publish is serialized.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// Channel returns the underlying AMQP channel.
func (r *Client) Channel() *amqp.Channel {
	return r.channel
}

// Close closes the channel and connection for graceful shutdown.
func (r *Client) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}

	return nil
}

// MustNewClient creates a new RabbitMQ client.
func MustNewClient() *Client {
	host := os.Getenv("RABBITMQ_HOST")
	if host == "" {
		host = defaultHost
	}

	connStr := fmt.Sprintf(
		"amqp://%s:%s@%s:5672/",
		os.Getenv("RABBITMQ_DEFAULT_USER"),
		os.Getenv("RABBITMQ_DEFAULT_PASS"),
		host,
	)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to RabbitMQ: %v", err))
	}

	channel, err := conn.Channel()
	if err != nil {
		err := conn.Close()
		if err != nil {
			panic(fmt.Sprintf("Failed to close a connection: %v", err))
		}
		panic(fmt.Sprintf("Failed to open a channel: %v", err))
	}

	slog.Info("RabbitMQ connected", "host", host)

	return &Client{
		conn:    conn,
		channel: channel,
	}
}

type DeclareQueueConfig struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Args       amqp.Table
}

// DeclareQueue declares a queue with the given configuration.
func (r *Client) DeclareQueue(cfg DeclareQueueConfig) (amqp.Queue, error) {
	return r.channel.QueueDeclare(
		cfg.Name,
		cfg.Durable,
		cfg.AutoDelete,
		cfg.Exclusive,
		cfg.NoWait,
		cfg.Args,
	)
}

// MustDeclareQueue declares a durable queue and panics on failure.
func (r *Client) MustDeclareQueue(name string) {
	if _, err := r.DeclareQueue(DeclareQueueConfig{Name: name, Durable: true}); err != nil {
		panic(fmt.Sprintf("Failed to declare queue %q: %v", name, err))
	}
}

// Publish sends an outbox message as a persistent delivery.
// The current trace context travels in the message headers.
func (r *Client) Publish(ctx context.Context, msg outbox.OutboxMessage) error {
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "Client.Publish")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.destination", msg.RoutingKey),
		attribute.String("messaging.message_id", msg.MessageID),
	)

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := amqp.Table{}
	for k, v := range carrier {
		headers[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.channel.Publish(
		msg.ExchangeName,
		msg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.MessageID,
			Timestamp:    time.Now(),
			Body:         msg.Payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message %s: %w", msg.MessageID, err)
	}

	return nil
}
