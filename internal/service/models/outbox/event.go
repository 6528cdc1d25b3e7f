package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QueueOrderEvents is the queue carrying order lifecycle events.
const QueueOrderEvents = "oms.order.events"

// OrderEvent is the payload published for every order state change.
type OrderEvent struct {
	Event      string    `json:"event"`
	OrderID    uuid.UUID `json:"orderId"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewOrderEventMessage builds an outbox row for an order event, ready to
// be inserted in the same transaction as the state change it describes.
func NewOrderEventMessage(event string, orderID uuid.UUID, orderStatus string, now time.Time) (OutboxMessage, error) {
	payload, err := json.Marshal(OrderEvent{
		Event:      event,
		OrderID:    orderID,
		Status:     orderStatus,
		OccurredAt: now,
	})
	if err != nil {
		return OutboxMessage{}, err
	}

	// Published on the default exchange, so the routing key is the
	// queue name. The event kind travels in the payload.
	return OutboxMessage{
		QueueName:   QueueOrderEvents,
		RoutingKey:  QueueOrderEvents,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  10,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}, nil
}
