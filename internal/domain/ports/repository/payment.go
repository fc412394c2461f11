package repository

import (
	"context"
	"time"

	"payment-relay/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	// Save inserts a pending payment. An existing row for the same order is left untouched.
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByOrder(ctx context.Context, tx Tx, orderID, userID string) (*model.Payment, error)
	// MarkCaptured moves a pending payment to captured and reports whether a row changed.
	MarkCaptured(ctx context.Context, tx Tx, orderID, userID, paymentID, signature string, capturedAt time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}
