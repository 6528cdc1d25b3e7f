package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/currency"
	"github.com/shopmesh/order-svc/internal/service/models/orderitem"
	"github.com/shopmesh/order-svc/internal/service/models/status"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidState is returned when an operation is attempted on an
	// order whose status does not permit it, e.g. deleting a confirmed
	// order.
	ErrInvalidState = errors.New("order is not in a valid state for this operation")
)

// Order represents a customer order in the system. The item set and the
// stored total are frozen at creation; only Status mutates afterwards.
type Order struct {
	ID                 uuid.UUID             `json:"id"`
	CustomerName       string                `json:"customerName"`
	CustomerEmail      string                `json:"customerEmail"`
	ShippingAddress    string                `json:"shippingAddress"`
	Status             status.Status         `json:"status"`
	TotalPriceCents    int64                 `json:"totalPriceCents"`
	TotalPriceCurrency currency.Currency     `json:"totalPriceCurrency"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	OrderItems         []orderitem.OrderItem `json:"orderItems"`
}
