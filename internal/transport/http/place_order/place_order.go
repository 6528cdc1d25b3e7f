package placeorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, model order.PlaceOrderModel) (order.Order, error)
}

// PlaceOrder handles the checkout request.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service) {
	var model order.PlaceOrderModel
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		respond.Error(w, &order.ValidationError{Err: err})
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	placed, err := service.PlaceOrder(r.Context(), model)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error placing order", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, placed)
}
