package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iinventory"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/istockjobrepo"
	"github.com/shopmesh/order-svc/internal/service/models/stockjob"
	"golang.org/x/sync/errgroup"
)

// Delta is one relative stock adjustment: negative to decrement for a
// placed order, positive to restore on cancellation or deletion.
type Delta struct {
	ProductID string
	Quantity  int
}

// Reconciler issues stock adjustments to the inventory gateway after the
// local transaction has committed. Failures never propagate to the
// caller: they are logged and recorded durably so the retry worker can
// re-issue them. The committed order is authoritative either way.
type Reconciler struct {
	gateway       iinventory.IInventoryGateway
	stockJobs     istockjobrepo.IStockJobRepository
	maxRetries    int
	retryInterval time.Duration
	timeout       time.Duration
	maxInFlight   int
}

// option is a function that configures the Reconciler.
type option func(*Reconciler)

// MustNewReconciler creates a new Reconciler.
func MustNewReconciler(opts ...option) *Reconciler {
	r := &Reconciler{
		maxRetries:    10,
		retryInterval: 30 * time.Second,
		timeout:       30 * time.Second,
		maxInFlight:   3,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.gateway == nil {
		panic("reconciler requires an inventory gateway")
	}
	if r.stockJobs == nil {
		panic("reconciler requires a stock job repository")
	}

	return r
}

// WithInventoryGateway sets the inventory gateway for the Reconciler.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithInventoryGateway(gateway iinventory.IInventoryGateway) option {
	return func(r *Reconciler) {
		r.gateway = gateway
	}
}

// WithStockJobRepository sets the durable retry store for failed
// adjustments.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStockJobRepository(repo istockjobrepo.IStockJobRepository) option {
	return func(r *Reconciler) {
		r.stockJobs = repo
	}
}

// WithRetryPolicy sets how failed adjustments are scheduled for retry.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRetryPolicy(maxRetries int, retryInterval time.Duration) option {
	return func(r *Reconciler) {
		r.maxRetries = maxRetries
		r.retryInterval = retryInterval
	}
}

// WithDispatchTimeout sets the deadline for one round of adjustments.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDispatchTimeout(timeout time.Duration) option {
	return func(r *Reconciler) {
		r.timeout = timeout
	}
}

// Apply issues one adjustment per delta, best-effort. It runs on its own
// deadline, detached from the inbound request context: once the order is
// committed, cancelling the request must not abandon reconciliation.
func (r *Reconciler) Apply(orderID uuid.UUID, deltas []Delta) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	g := &errgroup.Group{}
	g.SetLimit(r.maxInFlight)

	for _, delta := range deltas {
		delta := delta
		g.Go(func() error {
			r.apply(ctx, orderID, delta)

			return nil
		})
	}

	_ = g.Wait()
}

func (r *Reconciler) apply(ctx context.Context, orderID uuid.UUID, delta Delta) {
	if _, err := r.gateway.AdjustStock(ctx, delta.ProductID, delta.Quantity); err != nil {
		slog.Error("Stock adjustment failed, recording for retry",
			"order_id", orderID,
			"product_id", delta.ProductID,
			"delta", delta.Quantity,
			"error", err,
		)

		now := time.Now()
		job := stockjob.Adjustment{
			OrderID:       orderID,
			ProductID:     delta.ProductID,
			DeltaQuantity: delta.Quantity,
			MaxRetries:    r.maxRetries,
			LastError:     err.Error(),
			CreatedAt:     now,
			UpdatedAt:     now,
			NextRetryAt:   now.Add(r.retryInterval),
		}

		// The dispatch deadline must not take the failure record with
		// it: a gateway that stalls until the deadline would otherwise
		// leave the delta unrecorded and unrecoverable.
		recordCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := r.stockJobs.Insert(recordCtx, job); err != nil {
			slog.Error("Failed to record stock adjustment for retry",
				"order_id", orderID,
				"product_id", delta.ProductID,
				"delta", delta.Quantity,
				"error", err,
			)
		}

		return
	}

	slog.Info("Stock adjusted",
		"order_id", orderID,
		"product_id", delta.ProductID,
		"delta", delta.Quantity,
	)
}
