package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"  // order created at the gateway; awaiting capture
	PaymentStatusCaptured PaymentStatus = "captured" // signed callback verified
)

// CanTransitionTo reports whether a payment may move from s to next.
// Status only ever moves forward.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentStatusPending && next == PaymentStatusCaptured
}

// Payment records a gateway order and, once captured, the payment made against it.
// (OrderID, UserID) is the lookup key.
type Payment struct {
	OrderID    string
	UserID     string
	Provider   string // e.g. "razorpay"
	Amount     int64  // minor units
	Currency   string
	PlanID     string
	Status     PaymentStatus
	PaymentID  *string // set on capture
	Signature  *string // set on capture
	Meta       map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CapturedAt *time.Time
}

// NewPendingPayment builds the record persisted right after a gateway order is created.
func NewPendingPayment(order *Order, userID, provider string, now time.Time) *Payment {
	return &Payment{
		OrderID:  order.ID,
		UserID:   userID,
		Provider: provider,
		Amount:   order.Amount,
		Currency: order.Currency,
		PlanID:   order.PlanID,
		Status:   PaymentStatusPending,
		Meta: map[string]interface{}{
			"plan_name":        order.PlanName,
			"plan_description": order.PlanDescription,
			"receipt":          order.Receipt,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
