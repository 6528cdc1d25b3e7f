package order

// PlaceOrderLine is one requested (product, quantity) pairing in a
// checkout basket. Price and name are not supplied by the caller; they
// are snapshotted from the inventory gateway at placement time.
type PlaceOrderLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"gte=1"`
}

// PlaceOrderModel is the validated input of the checkout workflow.
type PlaceOrderModel struct {
	CustomerName    string           `json:"customerName"    validate:"required,notblank"`
	CustomerEmail   string           `json:"customerEmail"   validate:"required,email"`
	ShippingAddress string           `json:"shippingAddress" validate:"required,notblank"`
	Lines           []PlaceOrderLine `json:"items"           validate:"required,min=1,dive"`
}
