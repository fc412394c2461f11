// File: internal/infra/adapters/payment/razorpay_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements adapter.PaymentGateway against the Razorpay
// orders REST API using basic auth.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewRazorpayGateway builds the adapter. Empty credentials are allowed; the
// gateway then reports Configured() == false and refuses to create orders.
func NewRazorpayGateway(keyID, keySecret, baseURL string, timeout time.Duration) (*RazorpayGateway, error) {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (g *RazorpayGateway) Name() string  { return "razorpay" }
func (g *RazorpayGateway) KeyID() string { return g.keyID }

func (g *RazorpayGateway) Configured() bool {
	return g.keyID != "" && g.keySecret != ""
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder calls POST /v1/orders. Any failure comes back as *domain.GatewayError.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, in adapter.GatewayOrderRequest) (*adapter.GatewayOrder, error) {
	if !g.Configured() {
		return nil, domain.ErrConfiguration
	}
	payload := map[string]any{
		"amount":   in.Amount,
		"currency": in.Currency,
		"receipt":  in.Receipt,
	}
	if len(in.Notes) > 0 {
		payload["notes"] = in.Notes
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.GatewayError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(b))
	if err != nil {
		return nil, &domain.GatewayError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.GatewayError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e razorpayError
		if json.Unmarshal(body, &e) == nil && e.Error.Description != "" {
			return nil, &domain.GatewayError{Code: e.Error.Code, Message: e.Error.Description}
		}
		return nil, &domain.GatewayError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out razorpayOrder
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &domain.GatewayError{Err: fmt.Errorf("decode order: %w", err)}
	}
	if out.ID == "" {
		return nil, &domain.GatewayError{Err: errors.New("order id missing in response")}
	}
	return &adapter.GatewayOrder{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}
