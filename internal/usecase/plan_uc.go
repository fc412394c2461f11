package usecase

import (
	"context"

	"payment-relay/internal/domain/model"
	"payment-relay/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Get(ctx context.Context, id string) (*model.Plan, error)
	List(ctx context.Context) []model.Plan
}

type planUC struct {
	catalog repository.PlanCatalog
}

func NewPlanUseCase(catalog repository.PlanCatalog) *planUC {
	return &planUC{catalog: catalog}
}

func (u *planUC) Get(ctx context.Context, id string) (*model.Plan, error) {
	return u.catalog.Lookup(id)
}

func (u *planUC) List(ctx context.Context) []model.Plan {
	return u.catalog.List()
}
