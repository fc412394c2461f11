package repository

import "payment-relay/internal/domain/model"

// PlanCatalog is the immutable plan lookup built at process start.
type PlanCatalog interface {
	Lookup(id string) (*model.Plan, error)
	List() []model.Plan
}
