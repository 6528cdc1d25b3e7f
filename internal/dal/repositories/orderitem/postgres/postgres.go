package postgresrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopmesh/order-svc/internal/dal/postgres"
	"github.com/shopmesh/order-svc/internal/service/models/currency"
	"github.com/shopmesh/order-svc/internal/service/models/orderitem"
)

// OrderItemDal represents the order item data access layer model.
type OrderItemDal struct {
	Id              uuid.UUID `db:"id"`
	OrderId         uuid.UUID `db:"order_id"`
	ProductId       string    `db:"product_id"`
	ProductName     string    `db:"product_name"`
	Quantity        int       `db:"quantity"`
	PriceCents      int64     `db:"price_cents"`
	TotalPriceCents int64     `db:"total_price_cents"`
	PriceCurrency   string    `db:"price_currency"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ToModel converts OrderItemDal to the service layer OrderItem model.
func (oi *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	cur, err := currency.ParseCurrency(oi.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &orderitem.OrderItem{
		ID:              oi.Id,
		OrderID:         oi.OrderId,
		ProductID:       oi.ProductId,
		ProductName:     oi.ProductName,
		Quantity:        oi.Quantity,
		PriceCents:      oi.PriceCents,
		TotalPriceCents: oi.TotalPriceCents,
		PriceCurrency:   cur,
		CreatedAt:       oi.CreatedAt,
		UpdatedAt:       oi.UpdatedAt,
	}, nil
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderItemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"product_name",
	"quantity",
	"price_cents",
	"total_price_cents",
	"price_currency",
	"created_at",
	"updated_at",
}

func scanOrderItem(row pgx.Row) (*orderitem.OrderItem, error) {
	var dal OrderItemDal
	err := row.Scan(
		&dal.Id,
		&dal.OrderId,
		&dal.ProductId,
		&dal.ProductName,
		&dal.Quantity,
		&dal.PriceCents,
		&dal.TotalPriceCents,
		&dal.PriceCurrency,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// BulkInsert inserts multiple order items and returns them as persisted.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	if len(orderItems) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	builder := r.sb.Insert("order_items").Columns(orderItemColumns...)
	for _, oi := range orderItems {
		builder = builder.Values(
			oi.ID,
			oi.OrderID,
			oi.ProductID,
			oi.ProductName,
			oi.Quantity,
			oi.PriceCents,
			oi.TotalPriceCents,
			oi.PriceCurrency.String(),
			oi.CreatedAt,
			oi.UpdatedAt,
		)
	}

	query, args, err := builder.
		Suffix("RETURNING " + strings.Join(orderItemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, *item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves order items based on filter criteria.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	builder := r.sb.Select(orderItemColumns...).From("order_items")

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.OrderIds) > 0 {
		builder = builder.Where(sq.Eq{"order_id": filter.OrderIds})
	}
	if len(filter.ProductIds) > 0 {
		builder = builder.Where(sq.Eq{"product_id": filter.ProductIds})
	}

	query, args, err := builder.OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, *item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
