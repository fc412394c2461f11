package model

import (
	"time"

	"payment-relay/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive SubscriptionStatus = "active"
)

// SubscriptionPeriod is the fixed window granted by one captured payment.
const SubscriptionPeriod = 30 * 24 * time.Hour

// Subscription is keyed by user: one row per user, overwritten on every capture.
type Subscription struct {
	UserID      string
	PlanID      string
	Provider    string
	Status      SubscriptionStatus
	PaymentID   string
	PeriodStart time.Time
	PeriodEnd   time.Time
	UpdatedAt   time.Time
}

// NewActiveSubscription creates the subscription window that starts at capture time.
func NewActiveSubscription(userID string, plan *Plan, provider, paymentID string, capturedAt time.Time) (*Subscription, error) {
	if userID == "" || plan.IsZero() || paymentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		UserID:      userID,
		PlanID:      plan.ID,
		Provider:    provider,
		Status:      SubscriptionStatusActive,
		PaymentID:   paymentID,
		PeriodStart: capturedAt,
		PeriodEnd:   capturedAt.Add(SubscriptionPeriod),
		UpdatedAt:   capturedAt,
	}, nil
}

// IsActiveAt reports whether the window covers t.
func (s *Subscription) IsActiveAt(t time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && !t.Before(s.PeriodStart) && t.Before(s.PeriodEnd)
}
