package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopmesh/order-svc/internal/service/models/inventory"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/status"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Error maps service errors onto HTTP status codes and writes a JSON
// error body. Unrecognized errors become 500 without leaking internals.
func Error(w http.ResponseWriter, err error) {
	var (
		validationErr  *order.ValidationError
		notFoundErr    *inventory.ProductNotFoundError
		stockErr       *inventory.InsufficientStockError
		transitionErr  *status.TransitionError
		unavailableErr *inventory.GatewayUnavailableError
		persistenceErr *order.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &notFoundErr),
		errors.As(err, &stockErr),
		errors.As(err, &transitionErr),
		errors.Is(err, status.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidState):
		JSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, order.ErrOrderNotFound):
		JSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &unavailableErr):
		JSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	case errors.As(err, &persistenceErr):
		JSON(w, http.StatusInternalServerError, errorBody{Error: "failed to persist order"})
	default:
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
