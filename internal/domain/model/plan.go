package model

import (
	"strings"

	"payment-relay/internal/domain"
)

// Plan is a named subscription tier with a fixed price.
// Amount is in the currency's minor unit (paise for INR).
type Plan struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Amount      int64  `json:"amount" yaml:"amount"`
	Currency    string `json:"currency" yaml:"currency"`
	Description string `json:"description" yaml:"description"`
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, amount int64, currency, description string) (*Plan, error) {
	id = strings.TrimSpace(id)
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if id == "" || name == "" || amount <= 0 || currency == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:          id,
		Name:        name,
		Amount:      amount,
		Currency:    currency,
		Description: description,
	}, nil
}
