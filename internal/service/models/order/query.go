package order

import (
	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/status"
)

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids    []uuid.UUID   `json:"ids,omitempty"`
	Status status.Status `json:"status,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}

// StatsModel aggregates order counts and revenue for the summary endpoint.
type StatsModel struct {
	TotalOrders       int64                   `json:"totalOrders"`
	OrdersByStatus    map[status.Status]int64 `json:"ordersByStatus"`
	TotalRevenueCents int64                   `json:"totalRevenueCents"`
	RecentOrders      []Order                 `json:"recentOrders"`
}
