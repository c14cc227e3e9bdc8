package orderitem

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem represents an item within an order.
// SnapshotPrice and SnapshotName are copied from the catalog when the order is created and never refreshed.
type OrderItem struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"orderId"`
	ProductID     int64           `json:"productId"`
	Quantity      int             `json:"quantity"`
	SnapshotPrice decimal.Decimal `json:"snapshotPrice"`
	SnapshotName  string          `json:"snapshotName"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// LineTotal returns quantity * snapshot price.
func (oi OrderItem) LineTotal() decimal.Decimal {
	return oi.SnapshotPrice.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
