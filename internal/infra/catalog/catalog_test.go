//go:build !integration

package catalog

import (
	"errors"
	"testing"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
)

func testPlans() []model.Plan {
	return []model.Plan{
		{ID: "basic", Name: "Basic", Amount: 50, Currency: "INR"},
		{ID: "pro", Name: "Pro", Amount: 100, Currency: "inr", Description: "Pro tier"},
		{ID: "premium", Name: "Premium", Amount: 200, Currency: "INR"},
	}
}

func TestStaticCatalog(t *testing.T) {
	c, err := New(testPlans())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	t.Run("should find a known plan", func(t *testing.T) {
		p, err := c.Lookup("pro")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Amount != 100 || p.Currency != "INR" {
			t.Errorf("unexpected plan: %+v", p)
		}
	})

	t.Run("should report unknown plans", func(t *testing.T) {
		p, err := c.Lookup("bogus")
		if !errors.Is(err, domain.ErrUnknownPlan) {
			t.Fatalf("expected ErrUnknownPlan, got %v", err)
		}
		if p != nil {
			t.Error("expected nil plan")
		}
	})

	t.Run("should list in declaration order", func(t *testing.T) {
		list := c.List()
		want := []string{"basic", "pro", "premium"}
		if len(list) != len(want) {
			t.Fatalf("expected %d plans, got %d", len(want), len(list))
		}
		for i, id := range want {
			if list[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, list[i].ID)
			}
		}
	})

	t.Run("returned values do not alias the table", func(t *testing.T) {
		p, _ := c.Lookup("pro")
		p.Amount = 1
		list := c.List()
		list[0].Amount = 1

		again, _ := c.Lookup("pro")
		if again.Amount != 100 {
			t.Error("lookup result mutated the catalog")
		}
		if c.List()[0].Amount != 50 {
			t.Error("list result mutated the catalog")
		}
	})
}

func TestNew_RejectsBadPlans(t *testing.T) {
	cases := map[string][]model.Plan{
		"duplicate id": {
			{ID: "pro", Name: "Pro", Amount: 100, Currency: "INR"},
			{ID: "pro", Name: "Pro 2", Amount: 200, Currency: "INR"},
		},
		"zero amount": {{ID: "free", Name: "Free", Amount: 0, Currency: "INR"}},
		"empty id":    {{ID: " ", Name: "X", Amount: 1, Currency: "INR"}},
	}
	for name, plans := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(plans); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
