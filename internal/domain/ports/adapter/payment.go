package adapter

import "context"

// GatewayOrderRequest is the body of a gateway order-create call.
type GatewayOrderRequest struct {
	Amount   int64             // minor units
	Currency string            // ISO code
	Receipt  string            // at most 40 characters
	Notes    map[string]string // opaque key-value pairs kept by the gateway
}

// GatewayOrder is the gateway's view of a created order.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string
	// KeyID is the public key a client needs to open checkout.
	KeyID() string
	// Configured reports whether credentials are present.
	Configured() bool
	// CreateOrder registers an intent to pay with the provider.
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
}

// SignatureVerifier checks the signature a gateway attaches to a payment callback.
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}
