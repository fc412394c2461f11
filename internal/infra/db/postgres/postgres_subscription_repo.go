package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
	"payment-relay/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

// Upsert keeps one row per user; a new capture replaces the previous window.
func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if s == nil || s.UserID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO subscriptions (
  user_id, plan_id, provider, status, payment_id, period_start, period_end, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id) DO UPDATE SET
  plan_id = EXCLUDED.plan_id,
  provider = EXCLUDED.provider,
  status = EXCLUDED.status,
  payment_id = EXCLUDED.payment_id,
  period_start = EXCLUDED.period_start,
  period_end = EXCLUDED.period_end,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q, s.UserID, s.PlanID, s.Provider, string(s.Status), s.PaymentID,
		s.PeriodStart, s.PeriodEnd, s.UpdatedAt)
	return err
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const q = `
SELECT user_id, plan_id, provider, status, payment_id, period_start, period_end, updated_at
  FROM subscriptions
 WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	if err := row.Scan(&s.UserID, &s.PlanID, &s.Provider, &s.Status, &s.PaymentID, &s.PeriodStart, &s.PeriodEnd, &s.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return s, nil
}
