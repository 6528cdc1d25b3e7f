package ordersvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopmesh/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/shopmesh/order-svc/internal/dal/postgres"
	orderrepo "github.com/shopmesh/order-svc/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/shopmesh/order-svc/internal/dal/repositories/orderitem/postgres"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/orderitem"
)

// OrderService serves read paths: order listing, single order lookup and
// the statistics summary.
type OrderService struct {
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil || s.orderItemRepo == nil {
		panic("order service requires order and order item repositories")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.orderRepo = orderrepo.NewPostgresOrderRepository(pgClient.Pool())
		s.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(pgClient.Pool())
	}
}

// WithRepositories sets the repositories directly, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(
	orderRepo iorderrepo.IOrderRepository,
	orderItemRepo iorderitemrepo.IOrderItemRepository,
) option {
	return func(s *OrderService) {
		s.orderRepo = orderRepo
		s.orderItemRepo = orderItemRepo
	}
}

// GetOrders retrieves a page of orders with their items attached and the
// total count matching the filter.
func (s *OrderService) GetOrders(
	ctx context.Context,
	filter order.QueryOrdersModel,
) ([]order.Order, int64, error) {
	total, err := s.orderRepo.Count(ctx, &filter)
	if err != nil {
		return nil, 0, err
	}

	orders, err := s.orderRepo.Query(ctx, &filter)
	if err != nil {
		return nil, 0, err
	}

	if len(orders) == 0 {
		return []order.Order{}, total, nil
	}

	orderIds := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIds = append(orderIds, o.ID)
	}

	items, err := s.orderItemRepo.Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: orderIds,
	})
	if err != nil {
		return nil, 0, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, total, nil
}

// GetOrder retrieves a single order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (order.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	items, err := s.orderItemRepo.Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []uuid.UUID{o.ID},
	})
	if err != nil {
		return order.Order{}, err
	}
	o.OrderItems = items

	return o, nil
}

// GetStats aggregates order counts and revenue for the summary endpoint.
func (s *OrderService) GetStats(ctx context.Context) (order.StatsModel, error) {
	return s.orderRepo.Stats(ctx)
}
