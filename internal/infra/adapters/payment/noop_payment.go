package payment

import (
	"context"
	"fmt"
	"sync"

	"payment-relay/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is an in-memory gateway for dev mode and tests.
// Order ids are deterministic: order_noop_1, order_noop_2, ...
type NoopPaymentGateway struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]adapter.GatewayOrderRequest
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		orders: make(map[string]adapter.GatewayOrderRequest),
	}
}

func (g *NoopPaymentGateway) Name() string     { return "noop" }
func (g *NoopPaymentGateway) KeyID() string    { return "rzp_noop" }
func (g *NoopPaymentGateway) Configured() bool { return true }

func (g *NoopPaymentGateway) next() string {
	g.seq++
	return fmt.Sprintf("order_noop_%d", g.seq)
}

func (g *NoopPaymentGateway) CreateOrder(ctx context.Context, req adapter.GatewayOrderRequest) (*adapter.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next()
	g.orders[id] = req
	return &adapter.GatewayOrder{
		ID:       id,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

// Order returns what was sent for id, if anything.
func (g *NoopPaymentGateway) Order(id string) (adapter.GatewayOrderRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.orders[id]
	return r, ok
}
