package model

// OrderRequest is what a client sends to start a payment.
type OrderRequest struct {
	PlanID    string
	UserID    string
	UserEmail string
	UserName  string
}

// Order is the normalized gateway order returned to the client.
type Order struct {
	ID              string `json:"id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Receipt         string `json:"receipt"`
	Status          string `json:"status"`
	PlanID          string `json:"plan"`
	PlanName        string `json:"planName"`
	PlanDescription string `json:"planDescription"`
	KeyID           string `json:"key,omitempty"`
	Persisted       bool   `json:"-"`
}
