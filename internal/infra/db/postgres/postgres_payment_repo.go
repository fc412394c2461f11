package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
	"payment-relay/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

// paymentRepo stores payments keyed by (order_id, user_id). A nil pool makes
// every call fail with domain.ErrStoreUnavailable.
type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `order_id, user_id, provider, amount, currency, plan_id, status, payment_id, signature, meta, created_at, updated_at, captured_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(&p.OrderID, &p.UserID, &p.Provider, &p.Amount, &p.Currency, &p.PlanID, &p.Status,
		&p.PaymentID, &p.Signature, &p.Meta, &p.CreatedAt, &p.UpdatedAt, &p.CapturedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return p, nil
}

// Save inserts a pending payment; an existing row for the same key is kept.
func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if p == nil || p.OrderID == "" || p.UserID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO payments (
  order_id, user_id, provider, amount, currency, plan_id, status, meta, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (order_id, user_id) DO NOTHING;`

	meta := p.Meta
	if meta == nil {
		meta = map[string]interface{}{}
	}
	_, err := execSQL(ctx, r.pool, tx, q, p.OrderID, p.UserID, p.Provider, p.Amount, p.Currency, p.PlanID,
		string(p.Status), meta, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *paymentRepo) FindByOrder(ctx context.Context, tx repository.Tx, orderID, userID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id=$1 AND user_id=$2`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, orderID, userID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// MarkCaptured updates only a pending row and reports whether one changed.
func (r *paymentRepo) MarkCaptured(ctx context.Context, tx repository.Tx, orderID, userID, paymentID, signature string, capturedAt time.Time) (bool, error) {
	const q = `
UPDATE payments
   SET status = 'captured',
       payment_id = $3,
       signature = $4,
       captured_at = $5,
       updated_at = $5
 WHERE order_id = $1
   AND user_id = $2
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, userID, paymentID, signature, capturedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapExecErr(err)
	}
	return out, nil
}
