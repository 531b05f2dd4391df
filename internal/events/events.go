// Package events announces placed orders to downstream consumers.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"luxe-storefront/internal/domain"
)

const EventOrderPlaced = "OrderPlaced"

// Envelope wraps every published payload.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Version    int             `json:"event_version"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID       string             `json:"order_id"`
	CustomerID    string             `json:"customer_id"`
	CustomerEmail string             `json:"customer_email"`
	Items         []domain.OrderItem `json:"items"`
	TotalCents    int64              `json:"total"`
	Status        string             `json:"status"`
}

// NewOrderPlaced builds the envelope for a freshly placed order.
func NewOrderPlaced(producer string, o domain.Order) (Envelope, error) {
	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		CustomerEmail: o.CustomerEmail,
		Items:         o.Items,
		TotalCents:    o.TotalCents,
		Status:        o.Status,
	})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  EventOrderPlaced,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		Producer:   producer,
		Payload:    payload,
	}, nil
}
