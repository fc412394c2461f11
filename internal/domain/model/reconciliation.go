package model

import (
	"time"

	"payment-relay/internal/domain"
)

// ReconcileRequest carries the fields of a signed gateway callback.
type ReconcileRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	PlanID    string
	UserID    string
}

// Missing returns the names of empty fields, in callback order.
func (r ReconcileRequest) Missing() []string {
	var out []string
	for _, f := range []struct{ name, v string }{
		{"orderId", r.OrderID},
		{"paymentId", r.PaymentID},
		{"signature", r.Signature},
		{"plan", r.PlanID},
		{"userId", r.UserID},
	} {
		if f.v == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// PaymentOutcome describes what the capture update did to the payment row.
type PaymentOutcome string

const (
	PaymentOutcomeCaptured        PaymentOutcome = "captured"
	PaymentOutcomeAlreadyCaptured PaymentOutcome = "already_captured"
	PaymentOutcomeNotFound        PaymentOutcome = "not_found"
	PaymentOutcomeUnknown         PaymentOutcome = "unknown"
)

// StepFailure is one failed (or rolled back) store call.
type StepFailure struct {
	Step       domain.PersistenceStep `json:"step"`
	Error      string                 `json:"error"`
	RolledBack bool                   `json:"rolledBack,omitempty"`
	Err        error                  `json:"-"`
}

// ReconciliationResult is returned whenever the signature and plan were valid,
// even if some of the store calls failed.
type ReconciliationResult struct {
	OrderID        string         `json:"orderId"`
	PaymentID      string         `json:"paymentId"`
	PlanID         string         `json:"plan"`
	PlanName       string         `json:"planName"`
	Amount         int64          `json:"amount"`
	Currency       string         `json:"currency"`
	UserID         string         `json:"userId"`
	Timestamp      time.Time      `json:"timestamp"`
	PaymentOutcome PaymentOutcome `json:"paymentOutcome"`
	Failures       []StepFailure  `json:"failures,omitempty"`
	Degraded       bool           `json:"persistenceDegraded"`
}

// Persisted is true when every store call succeeded.
func (r *ReconciliationResult) Persisted() bool { return len(r.Failures) == 0 }

// Failed reports whether the given step is among the failures.
func (r *ReconciliationResult) Failed(step domain.PersistenceStep) bool {
	for _, f := range r.Failures {
		if f.Step == step {
			return true
		}
	}
	return false
}
