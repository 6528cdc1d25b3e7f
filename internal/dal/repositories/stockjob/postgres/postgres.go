package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopmesh/order-svc/internal/dal/postgres"
	"github.com/shopmesh/order-svc/internal/service/models/stockjob"
)

// StockJobRepository implements the stock adjustment retry store for
// PostgreSQL.
type StockJobRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewStockJobRepository creates a new stock adjustment repository.
func NewStockJobRepository(conn postgres.GenericConn) *StockJobRepository {
	return &StockJobRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert records an adjustment whose inline dispatch failed.
func (r *StockJobRepository) Insert(ctx context.Context, job stockjob.Adjustment) error {
	query, args, err := r.sb.Insert("stock_adjustments").
		Columns(
			"order_id",
			"product_id",
			"delta_quantity",
			"retry_count",
			"max_retries",
			"last_error",
			"created_at",
			"updated_at",
			"next_retry_at",
		).
		Values(
			job.OrderID,
			job.ProductID,
			job.DeltaQuantity,
			job.RetryCount,
			job.MaxRetries,
			job.LastError,
			job.CreatedAt,
			job.UpdatedAt,
			job.NextRetryAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert stock adjustment: %w", err)
	}

	return nil
}

// GetPending retrieves adjustments that are due for retry.
func (r *StockJobRepository) GetPending(
	ctx context.Context,
	limit int,
) ([]stockjob.Adjustment, error) {
	query, args, err := r.sb.Select(
		"id",
		"order_id",
		"product_id",
		"delta_quantity",
		"retry_count",
		"max_retries",
		"last_error",
		"created_at",
		"updated_at",
		"next_retry_at",
	).
		From("stock_adjustments").
		Where(sq.LtOrEq{"next_retry_at": time.Now()}).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("next_retry_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock adjustments: %w", err)
	}
	defer rows.Close()

	var jobs []stockjob.Adjustment
	for rows.Next() {
		var job stockjob.Adjustment
		err := rows.Scan(
			&job.ID,
			&job.OrderID,
			&job.ProductID,
			&job.DeltaQuantity,
			&job.RetryCount,
			&job.MaxRetries,
			&job.LastError,
			&job.CreatedAt,
			&job.UpdatedAt,
			&job.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock adjustment: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock adjustments: %w", err)
	}

	return jobs, nil
}

// Delete removes an adjustment after the gateway accepted it.
func (r *StockJobRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("stock_adjustments").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete stock adjustment: %w", err)
	}

	return nil
}

// UpdateRetry updates retry count and error information.
func (r *StockJobRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	query, args, err := r.sb.Update("stock_adjustments").
		Set("retry_count", retryCount).
		Set("last_error", lastError).
		Set("next_retry_at", nextRetryAt).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update stock adjustment: %w", err)
	}

	return nil
}
