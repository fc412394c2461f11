package catalog

import (
	"fmt"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
	"payment-relay/internal/domain/ports/repository"
)

var _ repository.PlanCatalog = (*StaticCatalog)(nil)

// StaticCatalog is an immutable plan table built once at start.
// Reads need no locking.
type StaticCatalog struct {
	plans []model.Plan
	byID  map[string]int
}

// New validates plans and keeps them in declaration order.
func New(plans []model.Plan) (*StaticCatalog, error) {
	c := &StaticCatalog{
		plans: make([]model.Plan, 0, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	for i, p := range plans {
		np, err := model.NewPlan(p.ID, p.Name, p.Amount, p.Currency, p.Description)
		if err != nil {
			return nil, fmt.Errorf("plan #%d (%q): %w", i, p.ID, err)
		}
		if _, dup := c.byID[np.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan id %q", domain.ErrInvalidArgument, np.ID)
		}
		c.byID[np.ID] = len(c.plans)
		c.plans = append(c.plans, *np)
	}
	return c, nil
}

// Lookup returns a copy of the plan so callers cannot mutate the table.
func (c *StaticCatalog) Lookup(id string) (*model.Plan, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPlan, id)
	}
	p := c.plans[i]
	return &p, nil
}

func (c *StaticCatalog) List() []model.Plan {
	out := make([]model.Plan, len(c.plans))
	copy(out, c.plans)
	return out
}
