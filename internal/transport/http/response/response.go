package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
)

// Envelope wraps every successful payload.
type Envelope struct {
	Message  string `json:"message"`
	Response any    `json:"response,omitempty"`
}

// errorBody is the body of every failed request.
type errorBody struct {
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// OK writes a 200 envelope.
func OK(w http.ResponseWriter, message string, payload any) {
	JSON(w, http.StatusOK, Envelope{Message: message, Response: payload})
}

// Error writes {"message": message} with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Message: message})
}

// FromError maps err to a response. A NotFoundError answers with its own status code and
// message; anything else is a 500 with fallback as the message.
func FromError(w http.ResponseWriter, err error, fallback string) {
	var notFound *order.NotFoundError
	if errors.As(err, &notFound) {
		Error(w, notFound.StatusCode, notFound.Message)

		return
	}

	Error(w, http.StatusInternalServerError, fallback)
}
