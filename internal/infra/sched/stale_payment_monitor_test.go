//go:build !integration

package sched

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"payment-relay/internal/domain/model"
	"payment-relay/internal/infra/metrics"
)

type stubPaymentUC struct {
	staleFn func(olderThan time.Duration, limit int) ([]*model.Payment, error)
	calls   int
}

func (s *stubPaymentUC) Reconcile(ctx context.Context, req model.ReconcileRequest) (*model.ReconciliationResult, error) {
	return nil, errors.New("not used")
}

func (s *stubPaymentUC) Lookup(ctx context.Context, orderID, userID string) (*model.Payment, error) {
	return nil, errors.New("not used")
}

func (s *stubPaymentUC) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]*model.Payment, error) {
	s.calls++
	return s.staleFn(olderThan, limit)
}

func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestStalePaymentMonitor_Tick(t *testing.T) {
	metrics.MustRegister()
	logger := zerolog.New(io.Discard)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("should publish the stale count and pool stats", func(t *testing.T) {
		uc := &stubPaymentUC{staleFn: func(olderThan time.Duration, limit int) ([]*model.Payment, error) {
			if olderThan != 45*time.Minute || limit != staleScanLimit {
				t.Errorf("unexpected query: %v %d", olderThan, limit)
			}
			return []*model.Payment{
				{OrderID: "order_2", CreatedAt: base.Add(time.Minute)},
				{OrderID: "order_1", CreatedAt: base},
			}, nil
		}}
		statsCalled := false
		m := NewStalePaymentMonitor(uc, func() (int32, int32, int32) {
			statsCalled = true
			return 4, 3, 1
		}, time.Minute, 45*time.Minute, &logger)

		m.tick(context.Background())

		if got := gaugeValue(t, "payments_stale_pending"); got != 2 {
			t.Errorf("expected gauge 2, got %v", got)
		}
		if !statsCalled {
			t.Error("expected pool stats to be read")
		}
	})

	t.Run("list errors keep the previous gauge", func(t *testing.T) {
		metrics.SetStalePendingPayments(7)
		uc := &stubPaymentUC{staleFn: func(time.Duration, int) ([]*model.Payment, error) {
			return nil, errors.New("store unavailable")
		}}
		m := NewStalePaymentMonitor(uc, nil, time.Minute, time.Minute, &logger)

		m.tick(context.Background())

		if got := gaugeValue(t, "payments_stale_pending"); got != 7 {
			t.Errorf("expected gauge to stay 7, got %v", got)
		}
	})
}

func TestStalePaymentMonitor_RunStopsOnCancel(t *testing.T) {
	logger := zerolog.New(io.Discard)
	uc := &stubPaymentUC{staleFn: func(time.Duration, int) ([]*model.Payment, error) { return nil, nil }}
	m := NewStalePaymentMonitor(uc, nil, time.Hour, time.Minute, &logger)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestOldest(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	got := oldest([]*model.Payment{
		{OrderID: "b", CreatedAt: base.Add(time.Hour)},
		{OrderID: "a", CreatedAt: base},
		{OrderID: "c", CreatedAt: base.Add(2 * time.Hour)},
	})
	if got.OrderID != "a" {
		t.Errorf("expected a, got %s", got.OrderID)
	}
}
