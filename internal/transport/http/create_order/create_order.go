package createorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/transport/http/response"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (order.CreateResult, error)
}

var validate = validator.New()

// itemInCreateOrderRequest represents an item in a create order request.
// price and snapshot_name are accepted but the catalog values are always used.
type itemInCreateOrderRequest struct {
	ProductID    int64            `json:"productId"               validate:"gt=0"`
	Quantity     int              `json:"quantity"                validate:"gt=0"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	SnapshotName string           `json:"snapshot_name,omitempty"`
}

// orderDate accepts an RFC3339 timestamp or a plain YYYY-MM-DD date.
type orderDate struct {
	time.Time
}

var orderDateLayouts = []string{time.RFC3339, time.DateOnly}

func (d *orderDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("orderDate must be a string: %w", err)
	}

	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t

			return nil
		}
	}

	return fmt.Errorf("orderDate %q is neither RFC3339 nor YYYY-MM-DD", raw)
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	OrderDate *orderDate                 `json:"orderDate"`
	Status    string                     `json:"status" validate:"required"`
	Code      string                     `json:"code"   validate:"required"`
	Items     []itemInCreateOrderRequest `json:"items"  validate:"dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validate.Struct(r)
}

// toModel converts createOrderRequest to order.CreateRequest. A missing order date
// defaults to now.
func (r *createOrderRequest) toModel(now time.Time) order.CreateRequest {
	orderDate := now
	if r.OrderDate != nil {
		orderDate = r.OrderDate.Time
	}

	items := make([]order.ItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.ItemInput{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			Price:        item.Price,
			SnapshotName: item.SnapshotName,
		}
	}

	return order.CreateRequest{
		OrderDate: orderDate,
		Status:    r.Status,
		Code:      r.Code,
		Items:     items,
	}
}

// createOrderResponse carries the stored order and the items the catalog did not know.
type createOrderResponse struct {
	Orders     *order.Order      `json:"orders"`
	ErrorItems []order.ItemError `json:"errorItems"`
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	result, err := service.CreateOrder(r.Context(), req.toModel(time.Now()))
	if err != nil {
		response.FromError(w, err, "failed to create order")
		slog.Error("Error creating order", "error", err)

		return
	}

	if result.Order == nil {
		slog.Warn("Order store returned no order", "code", req.Code)
	}

	response.OK(w, "Order created successfully", createOrderResponse{
		Orders:     result.Order,
		ErrorItems: result.Errors,
	})
}
