package iinventory

import (
	"context"

	"github.com/shopmesh/order-svc/internal/service/models/inventory"
)

// IInventoryGateway is the outbound boundary to the external inventory
// service. Implementations must apply deltas atomically on their side
// and reject adjustments that would drive stock negative.
type IInventoryGateway interface {
	GetItem(ctx context.Context, productID string) (inventory.Item, error)
	AdjustStock(ctx context.Context, productID string, delta int) (inventory.Item, error)
}
