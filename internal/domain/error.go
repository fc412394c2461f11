package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrStoreUnavailable   = errors.New("store unavailable")

	// Payment flow errors
	ErrConfiguration     = errors.New("payment gateway is not configured")
	ErrUnknownPlan       = errors.New("unknown plan")
	ErrMissingParameters = errors.New("missing required parameters")
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrGateway           = errors.New("payment gateway error")
	ErrPersistence       = errors.New("persistence error")
)

// GatewayError is returned when the remote order-creation call fails.
// Message carries the gateway's own description when it supplied one.
type GatewayError struct {
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrGateway, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", ErrGateway, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrGateway, e.Err)
	}
	return ErrGateway.Error()
}

func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGateway}
	}
	return []error{ErrGateway, e.Err}
}

// PersistenceStep names the store call that failed during reconciliation.
type PersistenceStep string

const (
	StepPaymentUpdate      PersistenceStep = "payment_update"
	StepSubscriptionUpsert PersistenceStep = "subscription_upsert"
	StepProfileUpdate      PersistenceStep = "profile_update"
	StepPaymentInsert      PersistenceStep = "payment_insert"
)

// PersistenceError tags a storage failure with the step it happened in.
// The three reconciliation writes are not atomic by default, so operators
// need to know which of them failed.
type PersistenceError struct {
	Step    PersistenceStep
	OrderID string
	UserID  string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s during %s (order=%s user=%s): %v", ErrPersistence, e.Step, e.OrderID, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
