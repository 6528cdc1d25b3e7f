package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopmesh/order-svc/internal/dal/postgres"
	"github.com/shopmesh/order-svc/internal/service/models/currency"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/orderitem"
	"github.com/shopmesh/order-svc/internal/service/models/status"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                 uuid.UUID `db:"id"`
	CustomerName       string    `db:"customer_name"`
	CustomerEmail      string    `db:"customer_email"`
	ShippingAddress    string    `db:"shipping_address"`
	Status             string    `db:"status"`
	TotalPriceCents    int64     `db:"total_price_cents"`
	TotalPriceCurrency string    `db:"total_price_currency"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.TotalPriceCurrency)
	if err != nil {
		return nil, err
	}
	st, err := status.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:                 o.Id,
		CustomerName:       o.CustomerName,
		CustomerEmail:      o.CustomerEmail,
		ShippingAddress:    o.ShippingAddress,
		Status:             st,
		TotalPriceCents:    o.TotalPriceCents,
		TotalPriceCurrency: cur,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		OrderItems:         []orderitem.OrderItem{}, // populated separately
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"id",
	"customer_name",
	"customer_email",
	"shipping_address",
	"status",
	"total_price_cents",
	"total_price_currency",
	"created_at",
	"updated_at",
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.CustomerName,
		&dal.CustomerEmail,
		&dal.ShippingAddress,
		&dal.Status,
		&dal.TotalPriceCents,
		&dal.TotalPriceCurrency,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// Insert inserts a single order and returns it as persisted.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID,
			o.CustomerName,
			o.CustomerEmail,
			o.ShippingAddress,
			o.Status.String(),
			o.TotalPriceCents,
			o.TotalPriceCurrency.String(),
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	inserted.OrderItems = append(inserted.OrderItems, o.OrderItems...)

	return *inserted, nil
}

// GetByID retrieves a single order by its identifier.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	return *o, nil
}

func (r *PostgresOrderRepository) applyFilter(
	builder sq.SelectBuilder,
	filter *order.QueryOrdersModel,
) sq.SelectBuilder {
	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status.String()})
	}

	return builder
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	builder := r.applyFilter(r.sb.Select(orderColumns...).From("orders"), filter).
		OrderBy("created_at DESC")

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of orders matching the filter.
func (r *PostgresOrderRepository) Count(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) (int64, error) {
	query, args, err := r.applyFilter(r.sb.Select("COUNT(*)").From("orders"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// UpdateStatus atomically updates the status field of an order.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	st status.Status,
	updatedAt time.Time,
) error {
	query, args, err := r.sb.Update("orders").
		Set("status", st.String()).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

// Delete removes an order; its items are removed by cascade.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.sb.Delete("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

// Stats aggregates order counts and revenue for the summary endpoint.
// Revenue excludes cancelled orders.
func (r *PostgresOrderRepository) Stats(ctx context.Context) (order.StatsModel, error) {
	stats := order.StatsModel{
		OrdersByStatus: make(map[status.Status]int64),
	}

	countQuery, _, err := r.sb.Select("COUNT(*)").From("orders").ToSql()
	if err != nil {
		return order.StatsModel{}, fmt.Errorf("failed to build count query: %w", err)
	}
	if err := r.conn.QueryRow(ctx, countQuery).Scan(&stats.TotalOrders); err != nil {
		return order.StatsModel{}, fmt.Errorf("failed to count orders: %w", err)
	}

	byStatusQuery, _, err := r.sb.Select("status", "COUNT(*)").
		From("orders").
		GroupBy("status").
		ToSql()
	if err != nil {
		return order.StatsModel{}, fmt.Errorf("failed to build group query: %w", err)
	}
	rows, err := r.conn.Query(ctx, byStatusQuery)
	if err != nil {
		return order.StatsModel{}, fmt.Errorf("failed to query orders by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			raw   string
			count int64
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return order.StatsModel{}, fmt.Errorf("failed to scan status count: %w", err)
		}
		st, err := status.ParseStatus(raw)
		if err != nil {
			return order.StatsModel{}, err
		}
		stats.OrdersByStatus[st] = count
	}
	if err := rows.Err(); err != nil {
		return order.StatsModel{}, fmt.Errorf("rows iteration error: %w", err)
	}

	revenueQuery, args, err := r.sb.Select("COALESCE(SUM(total_price_cents), 0)").
		From("orders").
		Where(sq.NotEq{"status": status.StatusCancelled.String()}).
		ToSql()
	if err != nil {
		return order.StatsModel{}, fmt.Errorf("failed to build revenue query: %w", err)
	}
	if err := r.conn.QueryRow(ctx, revenueQuery, args...).Scan(&stats.TotalRevenueCents); err != nil {
		return order.StatsModel{}, fmt.Errorf("failed to sum revenue: %w", err)
	}

	recent, err := r.Query(ctx, &order.QueryOrdersModel{Limit: 5})
	if err != nil {
		return order.StatsModel{}, err
	}
	stats.RecentOrders = recent

	return stats, nil
}
