package checkoutsvc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iinventory"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/shopmesh/order-svc/internal/dal/postgres"
	"github.com/shopmesh/order-svc/internal/dal/uow"
	"github.com/shopmesh/order-svc/internal/service/models/currency"
	"github.com/shopmesh/order-svc/internal/service/models/inventory"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/orderitem"
	"github.com/shopmesh/order-svc/internal/service/models/outbox"
	"github.com/shopmesh/order-svc/internal/service/models/status"
	"github.com/shopmesh/order-svc/internal/service/services/reconciler"
	"go.opentelemetry.io/otel"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

type stockReconciler interface {
	Apply(orderID uuid.UUID, deltas []reconciler.Delta)
}

// CheckoutService runs the order placement workflow: advisory stock
// check, fixed-point pricing, atomic local persistence, then best-effort
// inventory decrements.
type CheckoutService struct {
	newUOW     func() unitOfWork
	gateway    iinventory.IInventoryGateway
	reconciler stockReconciler
	validate   *validator.Validate
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil || s.gateway == nil || s.reconciler == nil {
		panic("checkout service requires a unit of work, gateway and reconciler")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the CheckoutService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CheckoutService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory overrides the unit of work source, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *CheckoutService) {
		s.newUOW = factory
	}
}

// WithInventoryGateway sets the inventory gateway for the CheckoutService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithInventoryGateway(gateway iinventory.IInventoryGateway) option {
	return func(s *CheckoutService) {
		s.gateway = gateway
	}
}

// WithReconciler sets the post-commit stock reconciler.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithReconciler(r stockReconciler) option {
	return func(s *CheckoutService) {
		s.reconciler = r
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// "required" alone accepts an all-whitespace name or address.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// PlaceOrder validates the basket against the inventory gateway,
// persists the order and its items in one transaction, and then issues
// stock decrements best-effort. A failed decrement never fails the
// placed order; inventory is eventually consistent with placed orders.
func (s *CheckoutService) PlaceOrder(
	ctx context.Context,
	model order.PlaceOrderModel,
) (order.Order, error) {
	ctx, span := otel.Tracer("order-svc").Start(ctx, "checkout.PlaceOrder")
	defer span.End()

	if err := s.validate.Struct(model); err != nil {
		return order.Order{}, &order.ValidationError{Err: err}
	}

	now := time.Now()
	orderID := uuid.New()

	items := make([]orderitem.OrderItem, 0, len(model.Lines))
	var totalCents int64
	for _, line := range model.Lines {
		item, err := s.gateway.GetItem(ctx, line.ProductID)
		if err != nil {
			return order.Order{}, err
		}
		if item.Stock < line.Quantity {
			return order.Order{}, &inventory.InsufficientStockError{
				ProductID: line.ProductID,
				Available: item.Stock,
				Requested: line.Quantity,
			}
		}

		lineTotal := item.PriceCents * int64(line.Quantity)
		totalCents += lineTotal

		items = append(items, orderitem.OrderItem{
			ID:              uuid.New(),
			OrderID:         orderID,
			ProductID:       line.ProductID,
			ProductName:     item.Name,
			Quantity:        line.Quantity,
			PriceCents:      item.PriceCents,
			TotalPriceCents: lineTotal,
			PriceCurrency:   currency.CurrencyUSD,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	o := order.Order{
		ID:                 orderID,
		CustomerName:       model.CustomerName,
		CustomerEmail:      model.CustomerEmail,
		ShippingAddress:    model.ShippingAddress,
		Status:             status.StatusPending,
		TotalPriceCents:    totalCents,
		TotalPriceCurrency: currency.CurrencyUSD,
		CreatedAt:          now,
		UpdatedAt:          now,
		OrderItems:         items,
	}

	persisted, err := s.persist(ctx, o, now)
	if err != nil {
		return order.Order{}, err
	}

	// Inventory is only touched after the order is durable. A crash
	// here leaves an order whose decrements are reconciled later; the
	// reverse ordering could lose stock for an order that never gets
	// recorded.
	s.reconciler.Apply(persisted.ID, decrements(persisted.OrderItems))

	slog.Info("Order placed",
		"order_id", persisted.ID,
		"items", len(persisted.OrderItems),
		"total_cents", persisted.TotalPriceCents,
	)

	return persisted, nil
}

func (s *CheckoutService) persist(
	ctx context.Context,
	o order.Order,
	now time.Time,
) (order.Order, error) {
	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return order.Order{}, &order.PersistenceError{Op: "begin", Err: err}
	}

	persisted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		s.rollback(ctx, work)

		return order.Order{}, &order.PersistenceError{Op: "insert order", Err: err}
	}

	insertedItems, err := work.OrderItemRepository().BulkInsert(ctx, o.OrderItems)
	if err != nil {
		s.rollback(ctx, work)

		return order.Order{}, &order.PersistenceError{Op: "insert order items", Err: err}
	}
	persisted.OrderItems = insertedItems

	msg, err := outbox.NewOrderEventMessage(
		outbox.EventOrderCreated, o.ID, o.Status.String(), now,
	)
	if err != nil {
		s.rollback(ctx, work)

		return order.Order{}, &order.PersistenceError{Op: "build event", Err: err}
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		s.rollback(ctx, work)

		return order.Order{}, &order.PersistenceError{Op: "insert event", Err: err}
	}

	if err := work.Commit(ctx); err != nil {
		s.rollback(ctx, work)

		return order.Order{}, &order.PersistenceError{Op: "commit", Err: err}
	}

	return persisted, nil
}

func (s *CheckoutService) rollback(ctx context.Context, work unitOfWork) {
	if err := work.Rollback(ctx); err != nil {
		slog.Error("Failed to roll back checkout transaction", "error", err)
	}
}

func decrements(items []orderitem.OrderItem) []reconciler.Delta {
	deltas := make([]reconciler.Delta, 0, len(items))
	for _, item := range items {
		deltas = append(deltas, reconciler.Delta{
			ProductID: item.ProductID,
			Quantity:  -item.Quantity,
		})
	}

	return deltas
}
