package repository

import (
	"context"

	"payment-relay/internal/domain/model"
)

// SubscriptionRepository is the port for user subscriptions.
type SubscriptionRepository interface {
	// Upsert writes the subscription keyed by user id, replacing any previous window.
	Upsert(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
}
