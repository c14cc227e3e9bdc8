package ordersvc

import (
	"context"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/service/models/product"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ordersvc")

// ProductLookup resolves catalog products. found is false for unknown products;
// err is reserved for transport level failures.
type ProductLookup interface {
	FindByID(ctx context.Context, productID int64) (p product.Product, found bool, err error)
}

// OrderStore persists orders. Find methods return a nil order when nothing matches.
type OrderStore interface {
	Create(ctx context.Context, o order.Order) (*order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	FindByCode(ctx context.Context, code string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// Recorder receives business metrics.
type Recorder interface {
	OrderCreated()
	ItemsUnresolved(n int)
}

type nopRecorder struct{}

func (nopRecorder) OrderCreated() {}
func (nopRecorder) ItemsUnresolved(int) {}

// OrderService is a service for managing orders.
type OrderService struct {
	store             OrderStore
	lookup            ProductLookup
	lookupConcurrency int
	recorder          Recorder
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService. It panics when the store or the product lookup is missing.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		lookupConcurrency: 1,
		recorder:          nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		panic("ordersvc: order store is required")
	}
	if s.lookup == nil {
		panic("ordersvc: product lookup is required")
	}

	return s
}

// WithOrderStore sets the order store for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderStore(store OrderStore) option {
	return func(s *OrderService) {
		s.store = store
	}
}

// WithProductLookup sets the catalog used to resolve order items.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductLookup(lookup ProductLookup) option {
	return func(s *OrderService) {
		s.lookup = lookup
	}
}

// WithLookupConcurrency sets how many item lookups of one order may run at once.
// Values below 2 keep lookups sequential.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLookupConcurrency(n int) option {
	return func(s *OrderService) {
		if n < 1 {
			n = 1
		}
		s.lookupConcurrency = n
	}
}

// WithRecorder sets the business metrics recorder.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRecorder(recorder Recorder) option {
	return func(s *OrderService) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}
