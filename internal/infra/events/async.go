package events

import (
	"context"

	"github.com/rs/zerolog"

	"payment-relay/internal/domain/ports/adapter"
	"payment-relay/internal/infra/logging"
	"payment-relay/internal/infra/metrics"
	"payment-relay/internal/infra/worker"
)

var _ adapter.EventPublisher = (*AsyncPublisher)(nil)

// AsyncPublisher hands events to a worker pool so request handlers never wait
// on the broker. Events are dropped when the pool is saturated.
type AsyncPublisher struct {
	next   adapter.EventPublisher
	pool   *worker.Pool
	logger *zerolog.Logger
}

func NewAsyncPublisher(next adapter.EventPublisher, pool *worker.Pool, logger *zerolog.Logger) *AsyncPublisher {
	l := logger.With().Str("component", "AsyncPublisher").Logger()
	return &AsyncPublisher{next: next, pool: pool, logger: &l}
}

func (a *AsyncPublisher) Publish(ctx context.Context, ev adapter.PaymentEvent) error {
	traceID := logging.TraceID(ctx)
	err := a.pool.Submit(func(wctx context.Context) error {
		if traceID != "" {
			wctx = logging.WithTraceID(wctx, traceID)
		}
		if err := a.next.Publish(wctx, ev); err != nil {
			metrics.IncEvent(ev.Type, "error")
			return err
		}
		metrics.IncEvent(ev.Type, "ok")
		return nil
	})
	if err != nil {
		metrics.IncEvent(ev.Type, "dropped")
		a.logger.Warn().Err(err).Str("event_id", ev.ID).Str("order_id", ev.OrderID).Msg("event dropped")
	}
	return err
}
