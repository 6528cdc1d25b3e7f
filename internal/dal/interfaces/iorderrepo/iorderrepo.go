package iorderrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/status"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	Count(ctx context.Context, filter *order.QueryOrdersModel) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, st status.Status, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (order.StatsModel, error)
}
