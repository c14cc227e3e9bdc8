package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemInput is a client supplied line item.
// Price and SnapshotName are accepted for compatibility and ignored: the catalog is the only price source.
type ItemInput struct {
	ProductID    int64            `json:"productId"`
	Quantity     int              `json:"quantity"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	SnapshotName string           `json:"snapshot_name,omitempty"`
}

// CreateRequest describes an order to be created.
type CreateRequest struct {
	OrderDate time.Time   `json:"orderDate"`
	Status    string      `json:"status"`
	Code      string      `json:"code"`
	Items     []ItemInput `json:"items"`
}

// ItemError identifies a requested product that could not be resolved in the catalog.
type ItemError struct {
	ProductID int64 `json:"productId"`
}

// CreateResult is the outcome of an order creation.
// Errors lists unresolved items; the order is created regardless.
type CreateResult struct {
	Order  *Order      `json:"order"`
	Errors []ItemError `json:"errors"`
}

// UpdateStatusRequest changes the status of an order identified by its numeric id.
type UpdateStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}
