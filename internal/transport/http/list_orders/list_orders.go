package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/status"
	"github.com/shopmesh/order-svc/internal/transport/http/respond"
)

type service interface {
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, int64, error)
}

// Shared so the decoder's struct cache is reused across requests.
// Unknown query keys are ignored rather than rejected.
var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return decoder
}

type queryOrdersRequest struct {
	Page   int    `schema:"page,omitempty"`
	Limit  int    `schema:"limit,omitempty"`
	Status string `schema:"status,omitempty"`
}

func (q *queryOrdersRequest) toModel() (order.QueryOrdersModel, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}

	model := order.QueryOrdersModel{
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}

	if q.Status != "" {
		st, err := status.ParseStatus(q.Status)
		if err != nil {
			return order.QueryOrdersModel{}, err
		}
		model.Status = st
	}

	return model, nil
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type listOrdersResponse struct {
	Data       []order.Order `json:"data"`
	Pagination pagination    `json:"pagination"`
}

// ListOrders handles the paginated order listing request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := &queryOrdersRequest{}
	if err := queryDecoder.Decode(query, r.URL.Query()); err != nil {
		respond.Error(w, &order.ValidationError{Err: err})
		slog.Error("Error decoding request", "error", err)

		return
	}

	model, err := query.toModel()
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error parsing status filter", "error", err)

		return
	}

	orders, total, err := service.GetOrders(r.Context(), model)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting orders", "error", err)

		return
	}

	totalPages := total / int64(query.Limit)
	if total%int64(query.Limit) != 0 {
		totalPages++
	}

	respond.JSON(w, http.StatusOK, listOrdersResponse{
		Data: orders,
		Pagination: pagination{
			Page:       query.Page,
			Limit:      query.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}
