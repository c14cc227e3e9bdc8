package ordersvc

import (
	"context"
	"log/slog"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/service/models/orderitem"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// resolvedItem is the lookup outcome of one requested item.
type resolvedItem struct {
	item  orderitem.OrderItem
	found bool
}

// CreateOrder resolves every requested item against the catalog, snapshots name and price
// of the resolved ones and stores the order. Unknown products do not fail the call: they are
// reported in CreateResult.Errors and left out of the order.
// Lookup and store failures are returned as is.
func (s *OrderService) CreateOrder(ctx context.Context, req order.CreateRequest) (order.CreateResult, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	resolved, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return order.CreateResult{}, err
	}

	items := make([]orderitem.OrderItem, 0, len(resolved))
	itemErrors := make([]order.ItemError, 0)
	for i, r := range resolved {
		if !r.found {
			itemErrors = append(itemErrors, order.ItemError{ProductID: req.Items[i].ProductID})

			continue
		}
		items = append(items, r.item)
	}

	newOrder := order.Order{
		OrderDate:     req.OrderDate,
		Status:        req.Status,
		Code:          req.Code,
		PaymentStatus: order.PaymentPending,
		Items:         items,
	}
	total := newOrder.Total()

	span.SetAttributes(
		attribute.String("order.code", req.Code),
		attribute.Int("order.items.requested", len(req.Items)),
		attribute.Int("order.items.unresolved", len(itemErrors)),
		attribute.String("order.total", total.String()),
	)

	created, err := s.store.Create(ctx, newOrder)
	if err != nil {
		return order.CreateResult{}, err
	}

	s.recorder.OrderCreated()
	if len(itemErrors) > 0 {
		s.recorder.ItemsUnresolved(len(itemErrors))
		slog.Warn("Order created with unresolved items",
			"code", req.Code,
			"unresolved", len(itemErrors),
		)
	}

	if created != nil {
		slog.Info("Order created", "order_id", created.ID, "code", created.Code, "total", total.String())
	}

	return order.CreateResult{
		Order:  created,
		Errors: itemErrors,
	}, nil
}

// resolveItems looks up every input and returns the outcomes indexed like inputs.
// With a concurrency of one the lookups run one after another in input order.
func (s *OrderService) resolveItems(ctx context.Context, inputs []order.ItemInput) ([]resolvedItem, error) {
	resolved := make([]resolvedItem, len(inputs))

	if s.lookupConcurrency <= 1 {
		for i, in := range inputs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			r, err := s.resolveItem(ctx, in)
			if err != nil {
				return nil, err
			}
			resolved[i] = r
		}

		return resolved, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			r, err := s.resolveItem(gctx, in)
			if err != nil {
				return err
			}
			resolved[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return resolved, nil
}

func (s *OrderService) resolveItem(ctx context.Context, in order.ItemInput) (resolvedItem, error) {
	p, found, err := s.lookup.FindByID(ctx, in.ProductID)
	if err != nil {
		return resolvedItem{}, err
	}

	if !found {
		slog.Debug("Product not found in catalog", "product_id", in.ProductID)

		return resolvedItem{}, nil
	}

	return resolvedItem{
		found: true,
		item: orderitem.OrderItem{
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			SnapshotPrice: p.Price,
			SnapshotName:  p.Name,
		},
	}, nil
}
