package repository

import "context"

// ProfileRepository only touches the plan column of an externally owned profile.
type ProfileRepository interface {
	UpdatePlan(ctx context.Context, tx Tx, userID, planID string) (bool, error)
}
