package deleteorder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/transport/http/respond"
)

type service interface {
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type deleteOrderResponse struct {
	Message string `json:"message"`
}

// DeleteOrder handles the pending order deletion request.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, &order.ValidationError{Err: err})

		return
	}

	if err := service.DeleteOrder(r.Context(), id); err != nil {
		respond.Error(w, err)
		slog.Error("Error deleting order", "order_id", id, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, deleteOrderResponse{Message: "Order deleted successfully"})
}
