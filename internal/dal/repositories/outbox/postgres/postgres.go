package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/ordering/internal/dal/postgres"
	"github.com/corray333/backend-labs/ordering/internal/service/models/outbox"
)

// OutboxDal represents a row of the outbox table.
type OutboxDal struct {
	Id           int64     `db:"id"`
	MessageId    string    `db:"message_id"`
	QueueName    string    `db:"queue_name"`
	ExchangeName string    `db:"exchange_name"`
	RoutingKey   string    `db:"routing_key"`
	Payload      []byte    `db:"payload"`
	ContentType  string    `db:"content_type"`
	RetryCount   int       `db:"retry_count"`
	MaxRetries   int       `db:"max_retries"`
	LastError    string    `db:"last_error"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	NextRetryAt  time.Time `db:"next_retry_at"`
}

// ToModel converts OutboxDal to the service layer message.
func (d *OutboxDal) ToModel() outbox.OutboxMessage {
	return outbox.OutboxMessage{
		ID:           d.Id,
		MessageID:    d.MessageId,
		QueueName:    d.QueueName,
		ExchangeName: d.ExchangeName,
		RoutingKey:   d.RoutingKey,
		Payload:      d.Payload,
		ContentType:  d.ContentType,
		RetryCount:   d.RetryCount,
		MaxRetries:   d.MaxRetries,
		LastError:    d.LastError,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		NextRetryAt:  d.NextRetryAt,
	}
}

// values lists the insertable fields in the order of outboxColumns.
func (d *OutboxDal) values() []any {
	return []any{
		d.MessageId,
		d.QueueName,
		d.ExchangeName,
		d.RoutingKey,
		d.Payload,
		d.ContentType,
		d.RetryCount,
		d.MaxRetries,
		d.LastError,
		d.CreatedAt,
		d.UpdatedAt,
		d.NextRetryAt,
	}
}

// OutboxDalFromModel converts a service layer message to OutboxDal.
func OutboxDalFromModel(msg *outbox.OutboxMessage) *OutboxDal {
	return &OutboxDal{
		Id:           msg.ID,
		MessageId:    msg.MessageID,
		QueueName:    msg.QueueName,
		ExchangeName: msg.ExchangeName,
		RoutingKey:   msg.RoutingKey,
		Payload:      msg.Payload,
		ContentType:  msg.ContentType,
		RetryCount:   msg.RetryCount,
		MaxRetries:   msg.MaxRetries,
		LastError:    msg.LastError,
		CreatedAt:    msg.CreatedAt,
		UpdatedAt:    msg.UpdatedAt,
		NextRetryAt:  msg.NextRetryAt,
	}
}

var outboxColumns = []string{
	"message_id",
	"queue_name",
	"exchange_name",
	"routing_key",
	"payload",
	"content_type",
	"retry_count",
	"max_retries",
	"last_error",
	"created_at",
	"updated_at",
	"next_retry_at",
}

// OutboxRepository implements the outbox repository for PostgreSQL.
type OutboxRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
	now  func() time.Time
}

// NewOutboxRepository creates a new outbox repository.
// conn may be the pool or a transaction shared with the order writes.
func NewOutboxRepository(conn postgres.GenericConn) *OutboxRepository {
	return &OutboxRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
}

// Insert adds a new message to the outbox.
func (r *OutboxRepository) Insert(ctx context.Context, msg outbox.OutboxMessage) error {
	return r.exec(ctx, "insert", r.sb.
		Insert("outbox").
		Columns(outboxColumns...).
		Values(OutboxDalFromModel(&msg).values()...),
	)
}

// GetPendingMessages retrieves messages that are due and still have attempts left.
func (r *OutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error) {
	sql, args, err := r.pendingQuery(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanOutboxMessages(rows.Next, rows.Scan)
	if err != nil {
		return nil, err
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, nil
}

// Delete removes a message from the outbox after successful delivery.
func (r *OutboxRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete", r.sb.Delete("outbox").Where(sq.Eq{"id": id}))
}

// UpdateRetry records a failed delivery and schedules the next attempt.
func (r *OutboxRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	return r.exec(ctx, "update", r.sb.
		Update("outbox").
		SetMap(map[string]any{
			"retry_count":   retryCount,
			"last_error":    lastError,
			"next_retry_at": nextRetryAt,
			"updated_at":    r.now(),
		}).
		Where(sq.Eq{"id": id}),
	)
}

// pendingQuery selects due messages oldest first. Exhausted messages stay in the table
// for inspection but are never picked again.
func (r *OutboxRepository) pendingQuery(limit int) sq.SelectBuilder {
	return r.sb.
		Select(append([]string{"id"}, outboxColumns...)...).
		From("outbox").
		Where(sq.And{
			sq.LtOrEq{"next_retry_at": r.now()},
			sq.Expr("retry_count < max_retries"),
		}).
		OrderBy("next_retry_at ASC", "id ASC").
		Limit(uint64(limit))
}

func (r *OutboxRepository) exec(ctx context.Context, action string, stmt sq.Sqlizer) error {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", action, err)
	}

	if _, err = r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to %s outbox message: %w", action, err)
	}

	return nil
}

func scanOutboxMessages(next func() bool, scan func(dest ...any) error) ([]outbox.OutboxMessage, error) {
	var messages []outbox.OutboxMessage
	for next() {
		var dal OutboxDal
		err := scan(
			&dal.Id,
			&dal.MessageId,
			&dal.QueueName,
			&dal.ExchangeName,
			&dal.RoutingKey,
			&dal.Payload,
			&dal.ContentType,
			&dal.RetryCount,
			&dal.MaxRetries,
			&dal.LastError,
			&dal.CreatedAt,
			&dal.UpdatedAt,
			&dal.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, dal.ToModel())
	}

	return messages, nil
}
