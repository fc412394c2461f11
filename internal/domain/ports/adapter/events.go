package adapter

import (
	"context"
	"time"
)

const EventPaymentCaptured = "payment.captured"

// PaymentEvent is emitted after a successful reconciliation.
type PaymentEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	PaymentID  string    `json:"payment_id"`
	UserID     string    `json:"user_id"`
	PlanID     string    `json:"plan_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Degraded   bool      `json:"persistence_degraded"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers payment events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev PaymentEvent) error
}
