package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/service/models/orderitem"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	createReq    order.CreateRequest
	createResult order.CreateResult
	createErr    error
	views        []order.View
	listErr      error
	statuses     map[string]string
	statusErr    error
	updates      []order.UpdateStatusRequest
	updateErr    error
}

func (s *fakeService) CreateOrder(_ context.Context, req order.CreateRequest) (order.CreateResult, error) {
	s.createReq = req

	return s.createResult, s.createErr
}

func (s *fakeService) ListOrders(_ context.Context) ([]order.View, error) {
	return s.views, s.listErr
}

func (s *fakeService) GetPaymentStatus(_ context.Context, code string) (string, error) {
	if s.statusErr != nil {
		return "", s.statusErr
	}
	status, ok := s.statuses[code]
	if !ok {
		return "", order.NewNotFoundError("order not found")
	}

	return status, nil
}

func (s *fakeService) UpdateOrderStatus(_ context.Context, req order.UpdateStatusRequest) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, req)

	return nil
}

func newTestTransport(t *testing.T, svc service) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	tr := NewHTTPTransport(svc, reg, reg)
	tr.RegisterRoutes()

	return tr.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}

	return rec, decoded
}

func TestHealth(t *testing.T) {
	h := newTestTransport(t, &fakeService{})

	rec, body := do(t, h, http.MethodGet, "/api/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Orders server is up!", body["message"])
}

func TestCreateOrder(t *testing.T) {
	created := &order.Order{
		ID:            10,
		Code:          "ABC",
		Status:        order.StatusReceived,
		PaymentStatus: order.PaymentPending,
		Items: []orderitem.OrderItem{
			{ID: 1, OrderID: 10, ProductID: 1, Quantity: 2, SnapshotPrice: decimal.RequireFromString("10.50"), SnapshotName: "X-Burger"},
		},
	}

	t.Run("created with unresolved items", func(t *testing.T) {
		svc := &fakeService{createResult: order.CreateResult{
			Order:  created,
			Errors: []order.ItemError{{ProductID: 99}},
		}}
		h := newTestTransport(t, svc)

		rec, body := do(t, h, http.MethodPost, "/api/order/create", `{
			"orderDate": "2025-03-14T12:00:00Z",
			"status": "RECEBIDO",
			"code": "ABC",
			"items": [
				{"productId": 1, "quantity": 2, "price": "0.01", "snapshot_name": "stale"},
				{"productId": 99, "quantity": 1}
			]
		}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Order created successfully", body["message"])

		resp := body["response"].(map[string]any)
		orders := resp["orders"].(map[string]any)
		assert.Equal(t, float64(10), orders["id"])
		assert.Equal(t, "PENDING", orders["paymentStatus"])
		errorItems := resp["errorItems"].([]any)
		require.Len(t, errorItems, 1)
		assert.Equal(t, float64(99), errorItems[0].(map[string]any)["productId"])

		assert.Equal(t, "ABC", svc.createReq.Code)
		assert.Equal(t, order.StatusReceived, svc.createReq.Status)
		assert.True(t, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC).Equal(svc.createReq.OrderDate))
		require.Len(t, svc.createReq.Items, 2)
		assert.Equal(t, int64(99), svc.createReq.Items[1].ProductID)
	})

	t.Run("empty item list is accepted", func(t *testing.T) {
		svc := &fakeService{createResult: order.CreateResult{Order: &order.Order{ID: 1}, Errors: []order.ItemError{}}}
		h := newTestTransport(t, svc)

		rec, _ := do(t, h, http.MethodPost, "/api/order/create", `{"status":"RECEBIDO","code":"E","items":[]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, svc.createReq.Items)
		assert.False(t, svc.createReq.OrderDate.IsZero())
	})

	t.Run("date-only order date", func(t *testing.T) {
		svc := &fakeService{createResult: order.CreateResult{Order: &order.Order{ID: 2}, Errors: []order.ItemError{}}}
		h := newTestTransport(t, svc)

		rec, _ := do(t, h, http.MethodPost, "/api/order/create",
			`{"orderDate":"2024-01-01","status":"RECEBIDO","code":"A1","items":[{"productId":1,"quantity":1}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(svc.createReq.OrderDate))
		assert.Equal(t, "A1", svc.createReq.Code)
	})

	t.Run("store returned nothing", func(t *testing.T) {
		svc := &fakeService{createResult: order.CreateResult{Errors: []order.ItemError{{ProductID: 5}}}}
		h := newTestTransport(t, svc)

		rec, body := do(t, h, http.MethodPost, "/api/order/create", `{"status":"RECEBIDO","code":"A","items":[{"productId":5,"quantity":1}]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := body["response"].(map[string]any)
		assert.Contains(t, resp, "orders")
		assert.Nil(t, resp["orders"])
		assert.Len(t, resp["errorItems"], 1)
	})

	tests := []struct {
		name     string
		body     string
		svc      *fakeService
		wantCode int
		wantMsg  string
	}{
		{
			name:     "malformed json",
			body:     `{"code":`,
			svc:      &fakeService{},
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid request body",
		},
		{
			name:     "zero quantity",
			body:     `{"status":"RECEBIDO","code":"A","items":[{"productId":1,"quantity":0}]}`,
			svc:      &fakeService{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing code",
			body:     `{"status":"RECEBIDO","items":[]}`,
			svc:      &fakeService{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "catalog failure",
			body:     `{"status":"RECEBIDO","code":"A","items":[{"productId":1,"quantity":1}]}`,
			svc:      &fakeService{createErr: errors.New("dial tcp: connection refused")},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "failed to create order",
		},
		{
			name:     "unparseable order date",
			body:     `{"orderDate":"01/02/2024","status":"RECEBIDO","code":"A","items":[]}`,
			svc:      &fakeService{},
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, newTestTransport(t, tt.svc), http.MethodPost, "/api/order/create", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotEmpty(t, body["message"])
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
			}
		})
	}
}

func TestListOrders(t *testing.T) {
	views := []order.View{
		order.NewView(order.Order{ID: 2, Status: order.StatusReady, Items: []orderitem.OrderItem{
			{ProductID: 1, Quantity: 2, SnapshotPrice: decimal.RequireFromString("10.50")},
			{ProductID: 2, Quantity: 1, SnapshotPrice: decimal.RequireFromString("25.00")},
		}}),
		order.NewView(order.Order{ID: 1, Status: order.StatusReceived}),
	}

	rec, body := do(t, newTestTransport(t, &fakeService{views: views}), http.MethodGet, "/api/order/list", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := body["response"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, float64(2), first["id"])
	assert.Equal(t, "46", first["totalPrice"])

	t.Run("empty", func(t *testing.T) {
		rec, body := do(t, newTestTransport(t, &fakeService{}), http.MethodGet, "/api/order/list", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{}, body["response"])
	})

	t.Run("store failure", func(t *testing.T) {
		rec, body := do(t, newTestTransport(t, &fakeService{listErr: errors.New("boom")}), http.MethodGet, "/api/order/list", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "failed to list orders", body["message"])
	})
}

func TestGetPaymentStatus(t *testing.T) {
	svc := &fakeService{statuses: map[string]string{"ABC": "PENDING"}}
	h := newTestTransport(t, svc)

	rec, body := do(t, h, http.MethodGet, "/api/order/get-payment-status/ABC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "PENDING"}, body["response"])

	rec, body = do(t, h, http.MethodGet, "/api/order/get-payment-status/UNKNOWN", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", body["message"])

	rec, _ = do(t, newTestTransport(t, &fakeService{statusErr: errors.New("boom")}), http.MethodGet, "/api/order/get-payment-status/ABC", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		svc := &fakeService{}
		rec, body := do(t, newTestTransport(t, svc), http.MethodPatch, "/api/order/update-status", `{"id":7,"status":"PRONTO"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Order status updated successfully", body["message"])
		assert.Equal(t, []order.UpdateStatusRequest{{ID: 7, Status: "PRONTO"}}, svc.updates)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeService{updateErr: order.NewNotFoundError("order not found")}
		rec, body := do(t, newTestTransport(t, svc), http.MethodPatch, "/api/order/update-status", `{"id":9999,"status":"X"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "order not found", body["message"])
	})

	t.Run("missing id", func(t *testing.T) {
		svc := &fakeService{}
		rec, _ := do(t, newTestTransport(t, svc), http.MethodPatch, "/api/order/update-status", `{"status":"X"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.updates)
	})

	t.Run("empty status", func(t *testing.T) {
		svc := &fakeService{}
		rec, _ := do(t, newTestTransport(t, svc), http.MethodPatch, "/api/order/update-status", `{"id":1,"status":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.updates)
	})
}

func TestMetricsAndDocs(t *testing.T) {
	h := newTestTransport(t, &fakeService{})

	do(t, h, http.MethodGet, "/api/", "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ordering_http_http_requests_total")

	rec, body := do(t, h, http.MethodGet, "/api/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0", body["swagger"])
}
