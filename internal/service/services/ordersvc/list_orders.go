package ordersvc

import (
	"cmp"
	"context"
	"slices"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"go.opentelemetry.io/otel/attribute"
)

// statusPriority is the kitchen display order. Lower comes first.
var statusPriority = map[string]int{
	order.StatusReady:     1,
	order.StatusPreparing: 2,
	order.StatusReceived:  3,
}

// unknownStatusPriority places statuses missing from statusPriority after every known one.
const unknownStatusPriority = 999999

func statusRank(status string) int {
	if p, ok := statusPriority[status]; ok {
		return p
	}

	return unknownStatusPriority
}

// ListOrders returns the active orders ordered for the kitchen display.
func (s *OrderService) ListOrders(ctx context.Context) ([]order.View, error) {
	ctx, span := tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	views := ProjectActive(orders)
	span.SetAttributes(
		attribute.Int("orders.stored", len(orders)),
		attribute.Int("orders.active", len(views)),
	)

	return views, nil
}

// ProjectActive drops finished orders and sorts the rest by status priority, then by
// order date ascending. The sort is stable. Totals are recomputed from the item snapshots.
// The input slice is left untouched.
func ProjectActive(orders []order.Order) []order.View {
	views := make([]order.View, 0, len(orders))
	for _, o := range orders {
		if o.Status == order.StatusFinished {
			continue
		}
		views = append(views, order.NewView(o))
	}

	slices.SortStableFunc(views, func(a, b order.View) int {
		if c := cmp.Compare(statusRank(a.Status), statusRank(b.Status)); c != 0 {
			return c
		}

		return a.OrderDate.Compare(b.OrderDate)
	})

	return views
}
