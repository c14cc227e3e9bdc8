package getpaymentstatus

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/corray333/backend-labs/ordering/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetPaymentStatus(ctx context.Context, code string) (string, error)
}

type paymentStatusResponse struct {
	Status string `json:"status"`
}

// GetPaymentStatus answers with the payment status of the order identified by the {code} path parameter.
func GetPaymentStatus(w http.ResponseWriter, r *http.Request, service service) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		response.Error(w, http.StatusBadRequest, "order code is required")

		return
	}

	status, err := service.GetPaymentStatus(r.Context(), code)
	if err != nil {
		response.FromError(w, err, "failed to get payment status")
		slog.Error("Error getting payment status", "code", code, "error", err)

		return
	}

	response.OK(w, "Payment status retrieved successfully", paymentStatusResponse{Status: status})
}
