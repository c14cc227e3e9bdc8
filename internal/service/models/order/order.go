package order

import (
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// Kitchen statuses observed in the domain. Any other string is still a valid status.
const (
	StatusReceived  = "RECEBIDO"
	StatusPreparing = "PREPARACAO"
	StatusReady     = "PRONTO"
	StatusFinished  = "FINALIZADO"
)

// PaymentPending is the payment status every new order starts with.
const PaymentPending = "PENDING"

// Order represents a customer order with its frozen line items.
type Order struct {
	ID            int64                 `json:"id"`
	OrderDate     time.Time             `json:"orderDate"`
	Code          string                `json:"code"`
	Status        string                `json:"status"`
	PaymentStatus string                `json:"paymentStatus"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	Items         []orderitem.OrderItem `json:"items"`
}

// Total sums quantity * snapshot price over the order items.
// It is never stored, so it always reflects the snapshot and not the live catalog.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}

	return total
}

// View is the listing representation of an order.
type View struct {
	Order
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// NewView builds a view with the total recomputed from the item snapshots.
func NewView(o Order) View {
	return View{
		Order:      o,
		TotalPrice: o.Total(),
	}
}
