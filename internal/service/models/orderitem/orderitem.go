package orderitem

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/currency"
)

// OrderItem is one line of an order. ProductName and PriceCents are
// snapshots taken at placement time so later catalog edits do not
// rewrite history. TotalPriceCents = Quantity * PriceCents.
type OrderItem struct {
	ID              uuid.UUID         `json:"id"`
	OrderID         uuid.UUID         `json:"orderId"`
	ProductID       string            `json:"productId"`
	ProductName     string            `json:"productName"`
	Quantity        int               `json:"quantity"`
	PriceCents      int64             `json:"priceCents"`
	TotalPriceCents int64             `json:"totalPriceCents"`
	PriceCurrency   currency.Currency `json:"priceCurrency"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
