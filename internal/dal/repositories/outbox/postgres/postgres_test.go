package postgresrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/outbox"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeConn struct {
	calls   []execCall
	execErr error
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (c *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.calls = append(c.calls, execCall{sql: sql, args: args})

	return pgconn.NewCommandTag("OK"), c.execErr
}

func newTestRepository(conn *fakeConn, now time.Time) *OutboxRepository {
	repo := NewOutboxRepository(conn)
	repo.now = func() time.Time { return now }

	return repo
}

func TestInsert(t *testing.T) {
	conn := &fakeConn{}
	repo := newTestRepository(conn, time.Now())

	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	err := repo.Insert(context.Background(), outbox.OutboxMessage{
		MessageID:   "evt-1",
		QueueName:   "orders",
		RoutingKey:  "orders",
		Payload:     []byte(`{}`),
		ContentType: "application/json",
		MaxRetries:  outbox.DefaultMaxRetries,
		CreatedAt:   at,
		UpdatedAt:   at,
		NextRetryAt: at,
	})
	require.NoError(t, err)

	require.Len(t, conn.calls, 1)
	assert.Contains(t, conn.calls[0].sql, "INSERT INTO outbox (message_id,queue_name,")
	assert.Contains(t, conn.calls[0].sql, "$12)")
	require.Len(t, conn.calls[0].args, len(outboxColumns))
	assert.Equal(t, "evt-1", conn.calls[0].args[0])
	assert.Equal(t, at, conn.calls[0].args[11])
}

func TestUpdateRetry(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	next := now.Add(2 * time.Minute)
	conn := &fakeConn{}
	repo := newTestRepository(conn, now)

	require.NoError(t, repo.UpdateRetry(context.Background(), 7, 3, "channel closed", next))

	require.Len(t, conn.calls, 1)
	assert.Equal(t,
		"UPDATE outbox SET last_error = $1, next_retry_at = $2, retry_count = $3, updated_at = $4 WHERE id = $5",
		conn.calls[0].sql,
	)
	assert.Equal(t, []any{"channel closed", next, 3, now, int64(7)}, conn.calls[0].args)
}

func TestDelete_WrapsExecError(t *testing.T) {
	conn := &fakeConn{execErr: errors.New("connection reset")}
	repo := newTestRepository(conn, time.Now())

	err := repo.Delete(context.Background(), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete outbox message")
	assert.ErrorIs(t, err, conn.execErr)

	require.Len(t, conn.calls, 1)
	assert.Equal(t, "DELETE FROM outbox WHERE id = $1", conn.calls[0].sql)
}

func TestPendingQuery(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(&fakeConn{}, now)

	sql, args, err := repo.pendingQuery(100).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "SELECT id, message_id,")
	assert.Contains(t, sql, "WHERE (next_retry_at <= $1 AND retry_count < max_retries)")
	assert.Contains(t, sql, "ORDER BY next_retry_at ASC, id ASC LIMIT 100")
	assert.Equal(t, []any{now}, args)
}

func TestScanOutboxMessages(t *testing.T) {
	rows := []OutboxDal{
		{Id: 1, MessageId: "a", RetryCount: 0, MaxRetries: 10},
		{Id: 2, MessageId: "b", RetryCount: 2, MaxRetries: 10, LastError: "timeout"},
	}

	i := -1
	next := func() bool {
		i++

		return i < len(rows)
	}
	scan := func(dest ...any) error {
		*dest[0].(*int64) = rows[i].Id
		*dest[1].(*string) = rows[i].MessageId
		*dest[7].(*int) = rows[i].RetryCount
		*dest[8].(*int) = rows[i].MaxRetries
		*dest[9].(*string) = rows[i].LastError

		return nil
	}

	messages, err := scanOutboxMessages(next, scan)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(2), messages[1].ID)
	assert.Equal(t, "b", messages[1].MessageID)
	assert.Equal(t, 2, messages[1].RetryCount)
	assert.Equal(t, "timeout", messages[1].LastError)

	_, err = scanOutboxMessages(func() bool { return true }, func(...any) error { return errors.New("bad column") })
	assert.ErrorContains(t, err, "failed to scan outbox message")
}
