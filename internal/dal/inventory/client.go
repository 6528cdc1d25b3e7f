package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopmesh/order-svc/internal/service/models/inventory"
	"github.com/shopmesh/order-svc/internal/service/models/money"
)

// Config holds the collaborator address and resilience settings. It is
// passed in at construction so tests can point the client at a stub
// server without touching ambient process state.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after the first, on
	// transient failures only. Validation rejections are never retried.
	MaxRetries uint64
	// RetryBackoff is the pause between attempts.
	RetryBackoff time.Duration
}

// Client wraps outbound calls to the inventory gateway with a request
// timeout, bounded retry and uniform error translation.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new inventory gateway client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// productResponse mirrors the product service payload. Price arrives as
// a decimal value and is parsed into cents without going through a
// float.
type productResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
	Stock int         `json:"stock"`
}

func (p *productResponse) toModel() (inventory.Item, error) {
	cents, err := money.ParseDecimal(p.Price.String())
	if err != nil {
		return inventory.Item{}, fmt.Errorf("failed to parse product price: %w", err)
	}

	return inventory.Item{
		ProductID:  p.ID,
		Name:       p.Name,
		PriceCents: cents,
		Stock:      p.Stock,
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetItem fetches the current price and available quantity of a product.
func (c *Client) GetItem(ctx context.Context, productID string) (inventory.Item, error) {
	url := fmt.Sprintf("%s/api/products/%s", c.cfg.BaseURL, productID)

	var item inventory.Item
	err := c.withRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(&inventory.GatewayUnavailableError{Op: "GetItem", Err: err})
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return &inventory.ProductNotFoundError{ProductID: productID}
		case resp.StatusCode >= 500:
			return retry.RetryableError(&inventory.GatewayUnavailableError{
				Op:  "GetItem",
				Err: fmt.Errorf("gateway returned status %d", resp.StatusCode),
			})
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected gateway status %d", resp.StatusCode)
		}

		item, err = decodeProduct(resp.Body)

		return err
	})
	if err != nil {
		return inventory.Item{}, err
	}

	return item, nil
}

// AdjustStock applies a relative stock delta: negative to decrement,
// positive to restore. The gateway checks atomically and rejects
// adjustments that would drive stock negative.
func (c *Client) AdjustStock(ctx context.Context, productID string, delta int) (inventory.Item, error) {
	url := fmt.Sprintf("%s/api/products/%s/stock", c.cfg.BaseURL, productID)

	body, err := json.Marshal(map[string]int{"quantity": delta})
	if err != nil {
		return inventory.Item{}, err
	}

	var item inventory.Item
	err = c.withRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(&inventory.GatewayUnavailableError{Op: "AdjustStock", Err: err})
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return &inventory.ProductNotFoundError{ProductID: productID}
		case resp.StatusCode == http.StatusBadRequest:
			return &inventory.AdjustmentRejectedError{
				ProductID: productID,
				Delta:     delta,
				Reason:    decodeErrorReason(resp.Body),
			}
		case resp.StatusCode >= 500:
			return retry.RetryableError(&inventory.GatewayUnavailableError{
				Op:  "AdjustStock",
				Err: fmt.Errorf("gateway returned status %d", resp.StatusCode),
			})
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected gateway status %d", resp.StatusCode)
		}

		item, err = decodeProduct(resp.Body)

		return err
	})
	if err != nil {
		return inventory.Item{}, err
	}

	return item, nil
}

func (c *Client) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewConstant(c.cfg.RetryBackoff))

	return retry.Do(ctx, backoff, fn)
}

func decodeProduct(r io.Reader) (inventory.Item, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var product productResponse
	if err := decoder.Decode(&product); err != nil {
		return inventory.Item{}, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return product.toModel()
}

func decodeErrorReason(r io.Reader) string {
	var er errorResponse
	if err := json.NewDecoder(r).Decode(&er); err != nil || er.Error == "" {
		return "rejected by gateway"
	}

	return er.Error
}
