package stockretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/inventory"
	"github.com/shopmesh/order-svc/internal/service/models/stockjob"
)

type fakeStockJobRepo struct {
	pending []stockjob.Adjustment
	deleted []int64
	retried map[int64]int
}

func (r *fakeStockJobRepo) Insert(context.Context, stockjob.Adjustment) error { return nil }

func (r *fakeStockJobRepo) GetPending(context.Context, int) ([]stockjob.Adjustment, error) {
	return r.pending, nil
}

func (r *fakeStockJobRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeStockJobRepo) UpdateRetry(_ context.Context, id int64, retryCount int, _ string, _ time.Time) error {
	if r.retried == nil {
		r.retried = map[int64]int{}
	}
	r.retried[id] = retryCount
	return nil
}

type fakeGateway struct {
	failFor map[string]error
	calls   []string
}

func (g *fakeGateway) GetItem(context.Context, string) (inventory.Item, error) {
	return inventory.Item{}, nil
}

func (g *fakeGateway) AdjustStock(_ context.Context, productID string, _ int) (inventory.Item, error) {
	g.calls = append(g.calls, productID)
	if err, ok := g.failFor[productID]; ok {
		return inventory.Item{}, err
	}
	return inventory.Item{}, nil
}

func TestProcessPendingReplaysAndDeletes(t *testing.T) {
	repo := &fakeStockJobRepo{pending: []stockjob.Adjustment{
		{ID: 1, OrderID: uuid.New(), ProductID: "prod-001", DeltaQuantity: -2, MaxRetries: 10},
		{ID: 2, OrderID: uuid.New(), ProductID: "prod-002", DeltaQuantity: 3, MaxRetries: 10},
	}}
	gateway := &fakeGateway{}

	worker := NewWorker(repo, gateway)
	worker.ProcessPending(context.Background())

	if len(gateway.calls) != 2 {
		t.Fatalf("gateway called %d times, want 2", len(gateway.calls))
	}
	if len(repo.deleted) != 2 {
		t.Errorf("deleted %d rows, want 2", len(repo.deleted))
	}
	if len(repo.retried) != 0 {
		t.Errorf("unexpected retry updates: %v", repo.retried)
	}
}

func TestProcessPendingFailureSchedulesRetry(t *testing.T) {
	repo := &fakeStockJobRepo{pending: []stockjob.Adjustment{
		{ID: 7, OrderID: uuid.New(), ProductID: "prod-001", DeltaQuantity: -1, RetryCount: 2, MaxRetries: 10},
	}}
	gateway := &fakeGateway{failFor: map[string]error{
		"prod-001": &inventory.GatewayUnavailableError{Op: "AdjustStock", Err: errors.New("connection refused")},
	}}

	worker := NewWorker(repo, gateway)
	worker.ProcessPending(context.Background())

	if len(repo.deleted) != 0 {
		t.Error("failed replay must keep the row")
	}
	if repo.retried[7] != 3 {
		t.Errorf("retry count = %d, want 3", repo.retried[7])
	}
}

func TestProcessPendingMixedResults(t *testing.T) {
	repo := &fakeStockJobRepo{pending: []stockjob.Adjustment{
		{ID: 1, ProductID: "prod-001", DeltaQuantity: -2, MaxRetries: 10},
		{ID: 2, ProductID: "prod-002", DeltaQuantity: -1, MaxRetries: 10},
	}}
	gateway := &fakeGateway{failFor: map[string]error{
		"prod-002": &inventory.GatewayUnavailableError{Op: "AdjustStock", Err: errors.New("timeout")},
	}}

	worker := NewWorker(repo, gateway)
	worker.ProcessPending(context.Background())

	// One failing row must not block the other.
	if len(repo.deleted) != 1 || repo.deleted[0] != 1 {
		t.Errorf("deleted = %v, want [1]", repo.deleted)
	}
	if repo.retried[2] != 1 {
		t.Errorf("retry count for row 2 = %d, want 1", repo.retried[2])
	}
}
