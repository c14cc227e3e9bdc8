package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/backend-labs/ordering/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/ordering/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/ordering/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/ordering/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/ordering/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/ordering/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/corray333/backend-labs/ordering/internal/dal/repositories/outbox/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork groups the repositories that have to change together.
// Before Begin the repositories run on the pool, afterwards on the transaction.
type UnitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work bound to the client pool.
func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	u := &UnitOfWork{pool: client.Pool()}
	u.bind(client.Pool())

	return u
}

func (u *UnitOfWork) bind(conn postgres.GenericConn) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.outboxRepo = outboxrepo.NewOutboxRepository(conn)
}

// OrderRepository returns the order repository of this unit.
func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

// OrderItemRepository returns the order item repository of this unit.
func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

// OutboxRepository returns the outbox repository of this unit.
func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// Begin opens a transaction and rebinds the repositories to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

// Commit commits the transaction if one was started.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback rolls the transaction back. Rolling back a committed transaction is a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
