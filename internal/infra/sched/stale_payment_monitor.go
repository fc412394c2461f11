package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"payment-relay/internal/domain/model"
	"payment-relay/internal/infra/metrics"
	"payment-relay/internal/usecase"
)

const staleScanLimit = 200

// PoolStatsFunc reports total, idle and in-use connections of the DB pool.
type PoolStatsFunc func() (total, idle, inUse int32)

// StalePaymentMonitor periodically counts pending payments that never saw a
// callback. Those are the orders an operator has to reconcile by hand.
type StalePaymentMonitor struct {
	uc         usecase.PaymentUseCase
	poolStats  PoolStatsFunc
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to count
	log        *zerolog.Logger
}

// NewStalePaymentMonitor builds the monitor. poolStats may be nil.
func NewStalePaymentMonitor(uc usecase.PaymentUseCase, poolStats PoolStatsFunc, interval, staleAfter time.Duration, logger *zerolog.Logger) *StalePaymentMonitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	l := logger.With().Str("component", "stale_payment_monitor").Logger()
	return &StalePaymentMonitor{uc: uc, poolStats: poolStats, interval: interval, staleAfter: staleAfter, log: &l}
}

// Run scans once right away, then on every tick until ctx is done.
func (m *StalePaymentMonitor) Run(ctx context.Context) error {
	m.log.Info().Dur("interval", m.interval).Msg("Starting stale payment monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Stopping stale payment monitor")
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *StalePaymentMonitor) tick(ctx context.Context) {
	if m.poolStats != nil {
		metrics.SetDBPoolStats(m.poolStats())
	}

	pending, err := m.uc.ListStale(ctx, m.staleAfter, staleScanLimit)
	if err != nil {
		m.log.Warn().Err(err).Msg("list stale payments failed")
		return
	}
	metrics.SetStalePendingPayments(len(pending))
	if len(pending) == 0 {
		return
	}

	ev := m.log.Warn().Int("count", len(pending)).Dur("older_than", m.staleAfter)
	if len(pending) == staleScanLimit {
		ev = ev.Bool("truncated", true)
	}
	ev.Str("oldest_order_id", oldest(pending).OrderID).Msg("pending payments without a callback")
}

func oldest(ps []*model.Payment) *model.Payment {
	o := ps[0]
	for _, p := range ps[1:] {
		if p.CreatedAt.Before(o.CreatedAt) {
			o = p
		}
	}
	return o
}
