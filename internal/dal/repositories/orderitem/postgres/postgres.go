package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/ordering/internal/dal/postgres"
	"github.com/corray333/backend-labs/ordering/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id            int64           `db:"id"`
	OrderId       int64           `db:"order_id"`
	ProductId     int64           `db:"product_id"`
	Quantity      int             `db:"quantity"`
	SnapshotPrice decimal.Decimal `db:"snapshot_price"`
	SnapshotName  string          `db:"snapshot_name"`
	CreatedAt     time.Time       `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ID:            oi.Id,
		OrderID:       oi.OrderId,
		ProductID:     oi.ProductId,
		Quantity:      oi.Quantity,
		SnapshotPrice: oi.SnapshotPrice,
		SnapshotName:  oi.SnapshotName,
		CreatedAt:     oi.CreatedAt,
	}
}

// OrderItemDalFromModel converts service layer OrderItem model to OrderItemDal.
func OrderItemDalFromModel(oi *orderitem.OrderItem) *OrderItemDal {
	return &OrderItemDal{
		Id:            oi.ID,
		OrderId:       oi.OrderID,
		ProductId:     oi.ProductID,
		Quantity:      oi.Quantity,
		SnapshotPrice: oi.SnapshotPrice,
		SnapshotName:  oi.SnapshotName,
		CreatedAt:     oi.CreatedAt,
	}
}

var orderItemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"quantity",
	"snapshot_price",
	"snapshot_name",
	"created_at",
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts multiple order items in one statement and returns them with ids,
// in the same order they were passed in.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	if len(orderItems) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	query := r.sb.
		Insert("order_items").
		Columns("order_id", "product_id", "quantity", "snapshot_price", "snapshot_name", "created_at")

	for i := range orderItems {
		dal := OrderItemDalFromModel(&orderItems[i])
		query = query.Values(
			dal.OrderId,
			dal.ProductId,
			dal.Quantity,
			dal.SnapshotPrice,
			dal.SnapshotName,
			dal.CreatedAt,
		)
	}

	sql, args, err := query.
		Suffix("RETURNING id, order_id, product_id, quantity, snapshot_price, snapshot_name, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	result, err := scanOrderItems(rows.Next, rows.Scan)
	if err != nil {
		return nil, err
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves order items based on filter criteria, ordered by id.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	sql, args, err := r.buildQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	result, err := scanOrderItems(rows.Next, rows.Scan)
	if err != nil {
		return nil, err
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// buildQuery binds order ids as a single array parameter so the statement stays
// within the bind parameter limit however many orders are listed.
func (r *PostgresOrderItemRepository) buildQuery(filter *orderitem.QueryOrderItemsModel) (string, []any, error) {
	query := r.sb.
		Select(orderItemColumns...).
		From("order_items").
		OrderBy("id ASC")

	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Expr("order_id = ANY(?)", filter.OrderIds))
	}

	return query.ToSql()
}

func scanOrderItems(next func() bool, scan func(dest ...any) error) ([]orderitem.OrderItem, error) {
	result := []orderitem.OrderItem{}
	for next() {
		var dal OrderItemDal
		err := scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.SnapshotPrice,
			&dal.SnapshotName,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	return result, nil
}
