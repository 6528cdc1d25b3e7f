package lifecyclesvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/shopmesh/order-svc/internal/dal/postgres"
	"github.com/shopmesh/order-svc/internal/dal/uow"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/orderitem"
	"github.com/shopmesh/order-svc/internal/service/models/outbox"
	"github.com/shopmesh/order-svc/internal/service/models/status"
	"github.com/shopmesh/order-svc/internal/service/services/reconciler"
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

// LifecycleService moves persisted orders through the status machine and
// restores inventory when an order is cancelled or removed.
type LifecycleService struct {
	newUOW     func() unitOfWork
	reconciler stockReconciler
	policy     status.TransitionPolicy
}

// option is a function that configures the LifecycleService.
type option func(*LifecycleService)

// MustNewLifecycleService creates a new LifecycleService.
func MustNewLifecycleService(opts ...option) *LifecycleService {
	s := &LifecycleService{
		policy: status.TerminalOnlyPolicy{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil || s.reconciler == nil {
		panic("lifecycle service requires a unit of work and reconciler")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the LifecycleService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *LifecycleService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory overrides the unit of work source, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *LifecycleService) {
		s.newUOW = factory
	}
}

// WithReconciler sets the post-commit stock reconciler.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithReconciler(r stockReconciler) option {
	return func(s *LifecycleService) {
		s.reconciler = r
	}
}

// WithTransitionPolicy swaps the status transition table.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTransitionPolicy(policy status.TransitionPolicy) option {
	return func(s *LifecycleService) {
		s.policy = policy
	}
}

// UpdateStatus transitions an order to newStatus. A transition into
// cancelled restores the stock that was decremented at placement time,
// best-effort, after the status change has committed: the status change
// is authoritative even if a restoration call fails.
func (s *LifecycleService) UpdateStatus(
	ctx context.Context,
	orderID uuid.UUID,
	newStatus status.Status,
) (order.Order, error) {
	work := s.newUOW()

	current, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}

	if err := s.policy.Validate(current.Status, newStatus); err != nil {
		return order.Order{}, err
	}

	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []uuid.UUID{orderID},
	})
	if err != nil {
		return order.Order{}, &order.PersistenceError{Op: "load order items", Err: err}
	}

	now := time.Now()
	if err := s.persistStatus(ctx, work, orderID, newStatus, now); err != nil {
		return order.Order{}, err
	}

	if newStatus == status.StatusCancelled && current.Status != status.StatusCancelled {
		s.reconciler.Apply(orderID, restorations(items))
	}

	slog.Info("Order status updated",
		"order_id", orderID,
		"from", current.Status,
		"to", newStatus,
	)

	current.Status = newStatus
	current.UpdatedAt = now
	current.OrderItems = items

	return current, nil
}

// DeleteOrder removes a pending order and its items, restoring the
// reserved stock first. Only pending orders may be deleted.
func (s *LifecycleService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	work := s.newUOW()

	current, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if current.Status != status.StatusPending {
		return order.ErrInvalidState
	}

	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []uuid.UUID{orderID},
	})
	if err != nil {
		return &order.PersistenceError{Op: "load order items", Err: err}
	}

	s.reconciler.Apply(orderID, restorations(items))

	if err := work.Begin(ctx); err != nil {
		return &order.PersistenceError{Op: "begin", Err: err}
	}

	if err := work.OrderRepository().Delete(ctx, orderID); err != nil {
		s.rollback(ctx, work)

		return err
	}

	msg, err := outbox.NewOrderEventMessage(
		outbox.EventOrderDeleted, orderID, current.Status.String(), time.Now(),
	)
	if err != nil {
		s.rollback(ctx, work)

		return &order.PersistenceError{Op: "build event", Err: err}
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		s.rollback(ctx, work)

		return &order.PersistenceError{Op: "insert event", Err: err}
	}

	if err := work.Commit(ctx); err != nil {
		s.rollback(ctx, work)

		return &order.PersistenceError{Op: "commit", Err: err}
	}

	slog.Info("Order deleted", "order_id", orderID)

	return nil
}

func (s *LifecycleService) persistStatus(
	ctx context.Context,
	work unitOfWork,
	orderID uuid.UUID,
	newStatus status.Status,
	now time.Time,
) error {
	if err := work.Begin(ctx); err != nil {
		return &order.PersistenceError{Op: "begin", Err: err}
	}

	if err := work.OrderRepository().UpdateStatus(ctx, orderID, newStatus, now); err != nil {
		s.rollback(ctx, work)

		return err
	}

	msg, err := outbox.NewOrderEventMessage(
		outbox.EventOrderStatusChanged, orderID, newStatus.String(), now,
	)
	if err != nil {
		s.rollback(ctx, work)

		return &order.PersistenceError{Op: "build event", Err: err}
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		s.rollback(ctx, work)

		return &order.PersistenceError{Op: "insert event", Err: err}
	}

	if err := work.Commit(ctx); err != nil {
		s.rollback(ctx, work)

		return &order.PersistenceError{Op: "commit", Err: err}
	}

	return nil
}

func (s *LifecycleService) rollback(ctx context.Context, work unitOfWork) {
	if err := work.Rollback(ctx); err != nil {
		slog.Error("Failed to roll back lifecycle transaction", "error", err)
	}
}

func restorations(items []orderitem.OrderItem) []reconciler.Delta {
	deltas := make([]reconciler.Delta, 0, len(items))
	for _, item := range items {
		deltas = append(deltas, reconciler.Delta{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return deltas
}
