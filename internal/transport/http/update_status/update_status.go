package updatestatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	"github.com/corray333/backend-labs/ordering/internal/transport/http/response"
	"github.com/go-playground/validator/v10"
)

type service interface {
	UpdateOrderStatus(ctx context.Context, req order.UpdateStatusRequest) error
}

var validate = validator.New()

// updateStatusRequest accepts any non-empty status string.
type updateStatusRequest struct {
	ID     int64  `json:"id"     validate:"gt=0"`
	Status string `json:"status" validate:"required"`
}

func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		slog.Error("Error decoding request body for status update", "error", err)

		return
	}

	if err := validate.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error validating request body for status update", "error", err)

		return
	}

	err := service.UpdateOrderStatus(r.Context(), order.UpdateStatusRequest{
		ID:     req.ID,
		Status: req.Status,
	})
	if err != nil {
		response.FromError(w, err, "failed to update order status")
		slog.Error("Error updating order status", "order_id", req.ID, "error", err)

		return
	}

	response.OK(w, "Order status updated successfully", nil)
}
