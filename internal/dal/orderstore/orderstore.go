package orderstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/dal/postgres"
	"github.com/corray333/backend-labs/ordering/internal/dal/uow"
	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/service/models/orderevent"
	"github.com/corray333/backend-labs/ordering/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/ordering/internal/service/models/outbox"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store persists orders with their items in Postgres and records order events in the outbox.
type Store struct {
	pgClient *postgres.Client
	queue    string
}

// NewStore creates a new Store. queue is the RabbitMQ queue order events are routed to.
func NewStore(pgClient *postgres.Client, queue string) *Store {
	return &Store{
		pgClient: pgClient,
		queue:    queue,
	}
}

func (s *Store) newUOW() *uow.UnitOfWork {
	return uow.NewUnitOfWork(s.pgClient)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("orderstore").Start(ctx, name)
}

// Create writes the order, its items and an order.created event in one transaction.
func (s *Store) Create(ctx context.Context, o order.Order) (*order.Order, error) {
	ctx, span := startSpan(ctx, "Store.Create")
	defer span.End()

	now := time.Now()
	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer rollback(ctx, work)

	o.CreatedAt = now
	o.UpdatedAt = now

	created, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, err
	}

	items := make([]orderitem.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.OrderID = created.ID
		item.CreatedAt = now
		items[i] = item
	}

	created.Items, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return nil, err
	}

	msg, err := outbox.FromEvent(orderevent.NewCreated(created, now), s.queue)
	if err != nil {
		return nil, err
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("order.id", created.ID),
		attribute.Int("order.items", len(created.Items)),
	)

	return &created, nil
}

// ListOrders returns every stored order with its items. No filtering or ordering policy is applied.
func (s *Store) ListOrders(ctx context.Context) ([]order.Order, error) {
	ctx, span := startSpan(ctx, "Store.ListOrders")
	defer span.End()

	return s.query(ctx, &order.QueryOrdersModel{})
}

// FindByID returns the order with the given id, or nil when it does not exist.
func (s *Store) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	ctx, span := startSpan(ctx, "Store.FindByID")
	defer span.End()

	return s.first(ctx, &order.QueryOrdersModel{Ids: []int64{id}, Limit: 1})
}

// FindByCode returns the order with the given business code, or nil when it does not exist.
// Codes are not unique; the earliest stored order wins.
func (s *Store) FindByCode(ctx context.Context, code string) (*order.Order, error) {
	ctx, span := startSpan(ctx, "Store.FindByCode")
	defer span.End()

	return s.first(ctx, &order.QueryOrdersModel{Codes: []string{code}, Limit: 1})
}

// UpdateStatus overwrites the order status and records an order.status_updated event
// when a row was changed.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) error {
	ctx, span := startSpan(ctx, "Store.UpdateStatus")
	defer span.End()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer rollback(ctx, work)

	affected, err := work.OrderRepository().UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}

	if affected > 0 {
		msg, err := outbox.FromEvent(orderevent.NewStatusUpdated(id, status, time.Now()), s.queue)
		if err != nil {
			return err
		}
		if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
			return err
		}
	}

	if err := work.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}

	return nil
}

func (s *Store) first(ctx context.Context, filter *order.QueryOrdersModel) (*order.Order, error) {
	orders, err := s.query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return nil, nil
	}

	return &orders[0], nil
}

// query loads orders matching filter and attaches their items.
func (s *Store) query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderItemQuery := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		orderItemQuery.OrderIds = append(orderItemQuery.OrderIds, o.ID)
	}

	orderItems, err := work.OrderItemRepository().Query(ctx, orderItemQuery)
	if err != nil {
		return nil, err
	}

	byOrder := make(map[int64][]orderitem.OrderItem, len(orders))
	for _, item := range orderItems {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	for i := range orders {
		items := byOrder[orders[i].ID]
		if items == nil {
			items = []orderitem.OrderItem{}
		}
		orders[i].Items = items
	}

	return orders, nil
}

func rollback(ctx context.Context, work *uow.UnitOfWork) {
	if err := work.Rollback(ctx); err != nil {
		slog.Error("Transaction rollback error", "error", err)
	}
}
