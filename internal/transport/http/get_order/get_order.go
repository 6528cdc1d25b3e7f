package getorder

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
	GetOrder(ctx context.Context, id uuid.UUID) (order.Order, error)
}

// GetOrder handles the single order lookup request.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, &order.ValidationError{Err: err})

		return
	}

	o, err := service.GetOrder(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting order", "order_id", id, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, o)
}
