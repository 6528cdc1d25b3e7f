package updatestatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/status"
	"github.com/shopmesh/order-svc/internal/transport/http/respond"
)

type service interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus status.Status) (order.Order, error)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles the order status transition request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, &order.ValidationError{Err: err})

		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, &order.ValidationError{Err: err})
		slog.Error("Error decoding request body for update status", "error", err)

		return
	}

	newStatus, err := status.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, err)

		return
	}

	updated, err := service.UpdateStatus(r.Context(), id, newStatus)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error updating order status", "order_id", id, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, updated)
}
