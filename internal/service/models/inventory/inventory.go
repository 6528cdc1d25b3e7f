package inventory

import "fmt"

// Item is the gateway's view of a catalog product. It is read and
// adjusted through the gateway but never stored locally.
type Item struct {
	ProductID  string
	Name       string
	PriceCents int64
	Stock      int
}

// ProductNotFoundError is returned when the gateway does not know the
// requested product id.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError is returned by the advisory availability check
// during checkout. The gateway's own check at adjustment time remains
// the final authority.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested,
	)
}

// GatewayUnavailableError covers timeouts and transport failures talking
// to the inventory gateway, after the retry budget is spent.
type GatewayUnavailableError struct {
	Op  string
	Err error
}

func (e *GatewayUnavailableError) Error() string {
	return fmt.Sprintf("inventory gateway unavailable during %s: %v", e.Op, e.Err)
}

func (e *GatewayUnavailableError) Unwrap() error {
	return e.Err
}

// AdjustmentRejectedError is a gateway-side validation rejection of a
// stock adjustment, e.g. a decrement that would drive stock negative.
type AdjustmentRejectedError struct {
	ProductID string
	Delta     int
	Reason    string
}

func (e *AdjustmentRejectedError) Error() string {
	return fmt.Sprintf(
		"stock adjustment rejected for product %s (delta %+d): %s",
		e.ProductID, e.Delta, e.Reason,
	)
}
