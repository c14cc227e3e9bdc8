package ordersvc

import (
	"context"
	"log/slog"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"go.opentelemetry.io/otel/attribute"
)

const orderNotFoundMessage = "order not found"

// GetPaymentStatus returns the payment status of the order with the given business code.
func (s *OrderService) GetPaymentStatus(ctx context.Context, code string) (string, error) {
	ctx, span := tracer.Start(ctx, "OrderService.GetPaymentStatus")
	defer span.End()
	span.SetAttributes(attribute.String("order.code", code))

	o, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}

	if o == nil {
		return "", order.NewNotFoundError(orderNotFoundMessage)
	}

	return o.PaymentStatus, nil
}

// UpdateOrderStatus overwrites the status of an existing order. The status is not checked
// against the known vocabulary.
// TODO: existence check and write are separate statements; a conditional update would close the race with concurrent deletes.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, req order.UpdateStatusRequest) error {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", req.ID),
		attribute.String("order.status", req.Status),
	)

	o, err := s.store.FindByID(ctx, req.ID)
	if err != nil {
		return err
	}

	if o == nil {
		return order.NewNotFoundError(orderNotFoundMessage)
	}

	if err := s.store.UpdateStatus(ctx, req.ID, req.Status); err != nil {
		return err
	}

	slog.Info("Order status updated", "order_id", req.ID, "from", o.Status, "to", req.Status)

	return nil
}
