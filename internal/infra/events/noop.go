package events

import (
	"context"

	"github.com/rs/zerolog"

	"payment-relay/internal/domain/ports/adapter"
)

var _ adapter.EventPublisher = (*NoopPublisher)(nil)

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct {
	logger *zerolog.Logger
}

func NewNoopPublisher(logger *zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (n *NoopPublisher) Publish(ctx context.Context, ev adapter.PaymentEvent) error {
	n.logger.Debug().Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("event discarded (no broker)")
	return nil
}
