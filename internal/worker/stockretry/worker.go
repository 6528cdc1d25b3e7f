package stockretry

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/shopmesh/order-svc/internal/dal/interfaces/iinventory"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/istockjobrepo"
	"github.com/spf13/viper"
)

// Worker re-issues stock adjustments whose inline dispatch failed. Rows
// are retried with exponential backoff until the gateway accepts them or
// max_retries is exhausted; exhausted rows stay in the table for manual
// reconciliation.
type Worker struct {
	stockJobs    istockjobrepo.IStockJobRepository
	gateway      iinventory.IInventoryGateway
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new stock retry worker.
func NewWorker(
	stockJobs istockjobrepo.IStockJobRepository,
	gateway iinventory.IInventoryGateway,
) *Worker {
	pollIntervalSeconds := viper.GetInt("inventory.retry.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("inventory.retry.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		stockJobs:    stockJobs,
		gateway:      gateway,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins processing pending stock adjustments.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Stock retry worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stock retry worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Stock retry worker stopped")

			return
		case <-ticker.C:
			w.ProcessPending(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// ProcessPending retrieves due adjustments and replays them against the
// gateway.
func (w *Worker) ProcessPending(ctx context.Context) {
	jobs, err := w.stockJobs.GetPending(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending stock adjustments", "error", err)

		return
	}

	if len(jobs) == 0 {
		return
	}

	slog.Info("Replaying stock adjustments", "count", len(jobs))

	for _, job := range jobs {
		_, err := w.gateway.AdjustStock(ctx, job.ProductID, job.DeltaQuantity)
		if err != nil {
			newRetryCount := job.RetryCount + 1
			backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30 // 60s, 120s, 240s, etc.
			nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

			slog.Warn("Stock adjustment replay failed, will retry",
				"adjustment_id", job.ID,
				"order_id", job.OrderID,
				"product_id", job.ProductID,
				"delta", job.DeltaQuantity,
				"retry_count", newRetryCount,
				"next_retry", nextRetryAt,
				"error", err,
			)

			if newRetryCount >= job.MaxRetries {
				slog.Error("Stock adjustment exhausted retries, needs manual reconciliation",
					"adjustment_id", job.ID,
					"order_id", job.OrderID,
					"product_id", job.ProductID,
					"delta", job.DeltaQuantity,
				)
			}

			if err := w.stockJobs.UpdateRetry(ctx, job.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
				slog.Error("Failed to update retry information", "adjustment_id", job.ID, "error", err)
			}

			continue
		}

		if err := w.stockJobs.Delete(ctx, job.ID); err != nil {
			slog.Error("Failed to delete stock adjustment after successful replay",
				"adjustment_id", job.ID,
				"error", err,
			)
		} else {
			slog.Info("Stock adjustment replayed",
				"adjustment_id", job.ID,
				"order_id", job.OrderID,
				"product_id", job.ProductID,
				"delta", job.DeltaQuantity,
			)
		}
	}
}
