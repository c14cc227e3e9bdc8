package ordersvc

import (
	"context"
	"sync"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/service/models/product"
	"github.com/shopspring/decimal"
)

type fakeLookup struct {
	mu       sync.Mutex
	products map[int64]product.Product
	failOn   map[int64]error
	calls    []int64
}

func newFakeLookup(products ...product.Product) *fakeLookup {
	l := &fakeLookup{
		products: make(map[int64]product.Product),
		failOn:   make(map[int64]error),
	}
	for _, p := range products {
		l.products[p.ID] = p
	}

	return l
}

func (l *fakeLookup) FindByID(_ context.Context, productID int64) (product.Product, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, productID)
	if err, ok := l.failOn[productID]; ok {
		return product.Product{}, false, err
	}

	p, ok := l.products[productID]

	return p, ok, nil
}

type fakeStore struct {
	mu         sync.Mutex
	orders     []order.Order
	nextID     int64
	createErr  error
	listErr    error
	findErr    error
	updateErr  error
	created    []order.Order
	updates    []order.UpdateStatusRequest
	findByCode []string
}

func (s *fakeStore) Create(_ context.Context, o order.Order) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}

	s.nextID++
	o.ID = s.nextID
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
		o.Items[i].OrderID = o.ID
	}
	s.created = append(s.created, o)
	s.orders = append(s.orders, o)

	return &o, nil
}

func (s *fakeStore) ListOrders(_ context.Context) ([]order.Order, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	return s.orders, nil
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (*order.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}

	for i := range s.orders {
		if s.orders[i].ID == id {
			o := s.orders[i]
			return &o, nil
		}
	}

	return nil, nil
}

func (s *fakeStore) FindByCode(_ context.Context, code string) (*order.Order, error) {
	s.findByCode = append(s.findByCode, code)
	if s.findErr != nil {
		return nil, s.findErr
	}

	for i := range s.orders {
		if s.orders[i].Code == code {
			o := s.orders[i]
			return &o, nil
		}
	}

	return nil, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id int64, status string) error {
	s.updates = append(s.updates, order.UpdateStatusRequest{ID: id, Status: status})
	if s.updateErr != nil {
		return s.updateErr
	}

	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
		}
	}

	return nil
}

type countingRecorder struct {
	created    int
	unresolved int
}

func (r *countingRecorder) OrderCreated() { r.created++ }
func (r *countingRecorder) ItemsUnresolved(n int) { r.unresolved += n }

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
