package istockjobrepo

import (
	"context"
	"time"

	"github.com/shopmesh/order-svc/internal/service/models/stockjob"
)

// IStockJobRepository defines the durable store of stock adjustments
// awaiting retry against the inventory gateway.
type IStockJobRepository interface {
	// Insert records an adjustment whose inline dispatch failed.
	Insert(ctx context.Context, job stockjob.Adjustment) error

	// GetPending retrieves adjustments that are due for retry.
	GetPending(ctx context.Context, limit int) ([]stockjob.Adjustment, error)

	// Delete removes an adjustment after the gateway accepted it.
	Delete(ctx context.Context, id int64) error

	// UpdateRetry updates retry count and error information.
	UpdateRetry(
		ctx context.Context,
		id int64,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}
