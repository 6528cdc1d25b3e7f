package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopmesh/order-svc/internal/service/models/inventory"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:      baseURL,
		Timeout:      time.Second,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	})
}

func TestGetItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/products/prod-001" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"prod-001","name":"Widget","price":99.99,"stock":5}`))
	}))
	defer srv.Close()

	item, err := newTestClient(srv.URL).GetItem(context.Background(), "prod-001")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}

	want := inventory.Item{ProductID: "prod-001", Name: "Widget", PriceCents: 9999, Stock: 5}
	if item != want {
		t.Errorf("item = %+v, want %+v", item, want)
	}
}

func TestGetItemNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetItem(context.Background(), "missing")

	var notFound *inventory.ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductNotFoundError, got %v", err)
	}
	if notFound.ProductID != "missing" {
		t.Errorf("ProductID = %q", notFound.ProductID)
	}
}

func TestGetItemRetriesTransientThenFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetItem(context.Background(), "prod-001")

	var unavailable *inventory.GatewayUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected GatewayUnavailableError, got %v", err)
	}
	// One initial attempt plus one retry.
	if calls != 2 {
		t.Errorf("gateway called %d times, want 2", calls)
	}
}

func TestGetItemRetrySucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"id":"prod-001","name":"Widget","price":5.5,"stock":3}`))
	}))
	defer srv.Close()

	item, err := newTestClient(srv.URL).GetItem(context.Background(), "prod-001")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.PriceCents != 550 {
		t.Errorf("PriceCents = %d, want 550", item.PriceCents)
	}
	if calls != 2 {
		t.Errorf("gateway called %d times, want 2", calls)
	}
}

func TestAdjustStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/products/prod-001/stock" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["quantity"] != -2 {
			t.Errorf("quantity = %d, want -2", body["quantity"])
		}

		_, _ = w.Write([]byte(`{"id":"prod-001","name":"Widget","price":99.99,"stock":3}`))
	}))
	defer srv.Close()

	item, err := newTestClient(srv.URL).AdjustStock(context.Background(), "prod-001", -2)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if item.Stock != 3 {
		t.Errorf("Stock = %d, want 3", item.Stock)
	}
}

func TestAdjustStockRejectedNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"insufficient stock"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AdjustStock(context.Background(), "prod-001", -10)

	var rejected *inventory.AdjustmentRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected AdjustmentRejectedError, got %v", err)
	}
	if rejected.Reason != "insufficient stock" {
		t.Errorf("Reason = %q", rejected.Reason)
	}
	// Validation rejections are permanent and must not be replayed.
	if calls != 1 {
		t.Errorf("gateway called %d times, want 1", calls)
	}
}

func TestAdjustStockUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).AdjustStock(context.Background(), "prod-001", 1)

	var unavailable *inventory.GatewayUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected GatewayUnavailableError, got %v", err)
	}
}

func TestDecodeProductBadPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"prod-001","name":"Widget","price":1.999,"stock":5}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GetItem(context.Background(), "prod-001"); err == nil {
		t.Fatal("expected error for price with three fractional digits")
	}
}
