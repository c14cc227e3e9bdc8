package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/transport/http/response"
)

type service interface {
	ListOrders(ctx context.Context) ([]order.View, error)
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.ListOrders(r.Context())
	if err != nil {
		response.FromError(w, err, "failed to list orders")
		slog.Error("Error listing orders", "error", err)

		return
	}

	if orders == nil {
		orders = []order.View{}
	}

	response.OK(w, "Orders listed successfully", orders)
}
