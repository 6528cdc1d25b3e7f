package orderstats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/transport/http/respond"
)

type service interface {
	GetStats(ctx context.Context) (order.StatsModel, error)
}

// OrderStats handles the order statistics summary request.
func OrderStats(w http.ResponseWriter, r *http.Request, service service) {
	stats, err := service.GetStats(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting order stats", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, stats)
}
