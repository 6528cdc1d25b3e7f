package checkoutsvc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/shopmesh/order-svc/internal/service/models/inventory"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/orderitem"
	"github.com/shopmesh/order-svc/internal/service/models/outbox"
	"github.com/shopmesh/order-svc/internal/service/models/status"
	"github.com/shopmesh/order-svc/internal/service/services/reconciler"
)

type fakeGateway struct {
	items       map[string]inventory.Item
	getErr      error
	adjustCalls int
}

func (g *fakeGateway) GetItem(_ context.Context, productID string) (inventory.Item, error) {
	if g.getErr != nil {
		return inventory.Item{}, g.getErr
	}
	item, ok := g.items[productID]
	if !ok {
		return inventory.Item{}, &inventory.ProductNotFoundError{ProductID: productID}
	}
	return item, nil
}

func (g *fakeGateway) AdjustStock(_ context.Context, productID string, _ int) (inventory.Item, error) {
	g.adjustCalls++
	return g.items[productID], nil
}

type fakeReconciler struct {
	orderID uuid.UUID
	deltas  []reconciler.Delta
	calls   int
}

func (r *fakeReconciler) Apply(orderID uuid.UUID, deltas []reconciler.Delta) {
	r.calls++
	r.orderID = orderID
	r.deltas = deltas
}

type fakeOrderRepo struct {
	inserted  []order.Order
	insertErr error
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	if r.insertErr != nil {
		return order.Order{}, r.insertErr
	}
	r.inserted = append(r.inserted, o)
	return o, nil
}

func (r *fakeOrderRepo) GetByID(context.Context, uuid.UUID) (order.Order, error) {
	return order.Order{}, order.ErrOrderNotFound
}

func (r *fakeOrderRepo) Query(context.Context, *order.QueryOrdersModel) ([]order.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Count(context.Context, *order.QueryOrdersModel) (int64, error) {
	return 0, nil
}

func (r *fakeOrderRepo) UpdateStatus(context.Context, uuid.UUID, status.Status, time.Time) error {
	return nil
}

func (r *fakeOrderRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (r *fakeOrderRepo) Stats(context.Context) (order.StatsModel, error) {
	return order.StatsModel{}, nil
}

type fakeOrderItemRepo struct {
	inserted []orderitem.OrderItem
}

func (r *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	r.inserted = append(r.inserted, items...)
	return items, nil
}

func (r *fakeOrderItemRepo) Query(context.Context, *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	messages []outbox.OutboxMessage
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) Delete(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

type fakeUOW struct {
	orders     *fakeOrderRepo
	orderItems *fakeOrderItemRepo
	outbox     *fakeOutboxRepo

	begun      bool
	committed  bool
	rolledBack bool
	commitErr  error
}

func (u *fakeUOW) Begin(context.Context) error    { u.begun = true; return nil }
func (u *fakeUOW) Commit(context.Context) error   { u.committed = u.commitErr == nil; return u.commitErr }
func (u *fakeUOW) Rollback(context.Context) error { u.rolledBack = true; return nil }

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository { return u.orders }

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItems
}

func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository { return u.outbox }

func newFakeUOW() *fakeUOW {
	return &fakeUOW{
		orders:     &fakeOrderRepo{},
		orderItems: &fakeOrderItemRepo{},
		outbox:     &fakeOutboxRepo{},
	}
}

func newTestService(uow *fakeUOW, gateway *fakeGateway, rec *fakeReconciler) *CheckoutService {
	return MustNewCheckoutService(
		WithUnitOfWorkFactory(func() unitOfWork { return uow }),
		WithInventoryGateway(gateway),
		WithReconciler(rec),
	)
}

func validModel() order.PlaceOrderModel {
	return order.PlaceOrderModel{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical Way",
		Lines: []order.PlaceOrderLine{
			{ProductID: "prod-001", Quantity: 2},
		},
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	uow := newFakeUOW()
	gateway := &fakeGateway{items: map[string]inventory.Item{
		"prod-001": {ProductID: "prod-001", Name: "Widget", PriceCents: 9999, Stock: 5},
	}}
	rec := &fakeReconciler{}

	svc := newTestService(uow, gateway, rec)

	placed, err := svc.PlaceOrder(context.Background(), validModel())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if placed.Status != status.StatusPending {
		t.Errorf("status = %s, want pending", placed.Status)
	}
	// 99.99 * 2, summed in cents.
	if placed.TotalPriceCents != 19998 {
		t.Errorf("total = %d cents, want 19998", placed.TotalPriceCents)
	}
	if len(placed.OrderItems) != 1 {
		t.Fatalf("items = %d, want 1", len(placed.OrderItems))
	}
	if placed.OrderItems[0].TotalPriceCents != 19998 {
		t.Errorf("line total = %d cents, want 19998", placed.OrderItems[0].TotalPriceCents)
	}
	if placed.OrderItems[0].OrderID != placed.ID {
		t.Error("item not linked to the placed order")
	}

	if !uow.committed {
		t.Error("transaction was not committed")
	}
	if len(uow.outbox.messages) != 1 {
		t.Fatalf("outbox messages = %d, want 1", len(uow.outbox.messages))
	}
	var event outbox.OrderEvent
	if err := json.Unmarshal(uow.outbox.messages[0].Payload, &event); err != nil {
		t.Fatalf("decode outbox payload: %v", err)
	}
	if event.Event != outbox.EventOrderCreated || event.OrderID != placed.ID {
		t.Errorf("outbox event = %+v, want order.created for %s", event, placed.ID)
	}

	if rec.calls != 1 {
		t.Fatalf("reconciler called %d times, want 1", rec.calls)
	}
	if rec.orderID != placed.ID {
		t.Error("reconciler got the wrong order id")
	}
	if len(rec.deltas) != 1 || rec.deltas[0] != (reconciler.Delta{ProductID: "prod-001", Quantity: -2}) {
		t.Errorf("deltas = %+v, want one decrement of 2 for prod-001", rec.deltas)
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	uow := newFakeUOW()
	gateway := &fakeGateway{items: map[string]inventory.Item{
		"prod-001": {ProductID: "prod-001", Name: "Widget", PriceCents: 9999, Stock: 1},
	}}
	rec := &fakeReconciler{}

	svc := newTestService(uow, gateway, rec)

	_, err := svc.PlaceOrder(context.Background(), validModel())

	var stockErr *inventory.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 1 || stockErr.Requested != 2 {
		t.Errorf("error fields = %+v", stockErr)
	}

	// Nothing may be written and no adjustment may be issued.
	if uow.begun {
		t.Error("transaction was opened for a rejected order")
	}
	if len(uow.orders.inserted) != 0 || len(uow.orderItems.inserted) != 0 {
		t.Error("rejected order left rows behind")
	}
	if rec.calls != 0 {
		t.Error("reconciler was called for a rejected order")
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	uow := newFakeUOW()
	gateway := &fakeGateway{items: map[string]inventory.Item{}}
	rec := &fakeReconciler{}

	svc := newTestService(uow, gateway, rec)

	_, err := svc.PlaceOrder(context.Background(), validModel())

	var notFound *inventory.ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductNotFoundError, got %v", err)
	}
	if uow.begun || rec.calls != 0 {
		t.Error("rejected order touched persistence or inventory")
	}
}

func TestPlaceOrderGatewayUnavailable(t *testing.T) {
	uow := newFakeUOW()
	gateway := &fakeGateway{
		getErr: &inventory.GatewayUnavailableError{Op: "get product", Err: errors.New("connection refused")},
	}
	rec := &fakeReconciler{}

	svc := newTestService(uow, gateway, rec)

	_, err := svc.PlaceOrder(context.Background(), validModel())

	var unavailable *inventory.GatewayUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected GatewayUnavailableError, got %v", err)
	}
	if uow.begun || rec.calls != 0 {
		t.Error("unavailable gateway must reject before persistence")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	cases := map[string]func(*order.PlaceOrderModel){
		"blank name":      func(m *order.PlaceOrderModel) { m.CustomerName = "   " },
		"bad email":       func(m *order.PlaceOrderModel) { m.CustomerEmail = "not-an-email" },
		"blank address":   func(m *order.PlaceOrderModel) { m.ShippingAddress = "" },
		"no lines":        func(m *order.PlaceOrderModel) { m.Lines = nil },
		"zero quantity":   func(m *order.PlaceOrderModel) { m.Lines[0].Quantity = 0 },
		"empty productID": func(m *order.PlaceOrderModel) { m.Lines[0].ProductID = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			uow := newFakeUOW()
			gateway := &fakeGateway{items: map[string]inventory.Item{}}
			rec := &fakeReconciler{}

			svc := newTestService(uow, gateway, rec)

			model := validModel()
			mutate(&model)

			_, err := svc.PlaceOrder(context.Background(), model)

			var valErr *order.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if uow.begun || rec.calls != 0 {
				t.Error("invalid order touched persistence or inventory")
			}
		})
	}
}

func TestPlaceOrderCommitFailure(t *testing.T) {
	uow := newFakeUOW()
	uow.commitErr = errors.New("deadlock detected")
	gateway := &fakeGateway{items: map[string]inventory.Item{
		"prod-001": {ProductID: "prod-001", Name: "Widget", PriceCents: 9999, Stock: 5},
	}}
	rec := &fakeReconciler{}

	svc := newTestService(uow, gateway, rec)

	_, err := svc.PlaceOrder(context.Background(), validModel())

	var persistErr *order.PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !uow.rolledBack {
		t.Error("failed commit was not rolled back")
	}
	if rec.calls != 0 {
		t.Error("stock was adjusted for an order that was never committed")
	}
}

func TestPlaceOrderMultiLineTotals(t *testing.T) {
	uow := newFakeUOW()
	gateway := &fakeGateway{items: map[string]inventory.Item{
		"prod-001": {ProductID: "prod-001", Name: "Widget", PriceCents: 9999, Stock: 10},
		"prod-002": {ProductID: "prod-002", Name: "Gadget", PriceCents: 250, Stock: 10},
	}}
	rec := &fakeReconciler{}

	svc := newTestService(uow, gateway, rec)

	model := validModel()
	model.Lines = []order.PlaceOrderLine{
		{ProductID: "prod-001", Quantity: 3},
		{ProductID: "prod-002", Quantity: 4},
	}

	placed, err := svc.PlaceOrder(context.Background(), model)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	// 3*99.99 + 4*2.50 = 309.97
	if placed.TotalPriceCents != 30997 {
		t.Errorf("total = %d cents, want 30997", placed.TotalPriceCents)
	}
	if len(rec.deltas) != 2 {
		t.Fatalf("deltas = %d, want 2", len(rec.deltas))
	}
	if rec.deltas[0].Quantity != -3 || rec.deltas[1].Quantity != -4 {
		t.Errorf("deltas = %+v", rec.deltas)
	}
}
