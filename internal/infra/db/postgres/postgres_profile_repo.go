package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"payment-relay/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

// profileRepo touches only the plan column; profiles are owned elsewhere.
type profileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *profileRepo {
	return &profileRepo{pool: pool}
}

func (r *profileRepo) UpdatePlan(ctx context.Context, tx repository.Tx, userID, planID string) (bool, error) {
	const q = `UPDATE profiles SET plan=$2, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, planID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() >= 1, nil
}
