package stockjob

import (
	"time"

	"github.com/google/uuid"
)

// Adjustment is a stock delta whose inline dispatch to the inventory
// gateway failed. Rows are retried at least once by the reconciliation
// worker until the gateway accepts them or MaxRetries is exhausted.
type Adjustment struct {
	ID            int64
	OrderID       uuid.UUID
	ProductID     string
	DeltaQuantity int
	RetryCount    int
	MaxRetries    int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	NextRetryAt   time.Time
}
