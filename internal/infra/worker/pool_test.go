//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPool(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("should run submitted tasks", func(t *testing.T) {
		p := NewPool(2, &logger)
		p.Start(context.Background())

		var n int32
		done := make(chan struct{}, 5)
		for i := 0; i < 5; i++ {
			if err := p.Submit(func(ctx context.Context) error {
				atomic.AddInt32(&n, 1)
				done <- struct{}{}
				return nil
			}); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
		for i := 0; i < 5; i++ {
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for tasks")
			}
		}
		p.Stop()
		if atomic.LoadInt32(&n) != 5 {
			t.Errorf("expected 5 runs, got %d", n)
		}
	})

	t.Run("should drop when the queue is full", func(t *testing.T) {
		p := NewPool(1, &logger) // not started: capacity 4
		for i := 0; i < 4; i++ {
			if err := p.Submit(func(ctx context.Context) error { return nil }); err != nil {
				t.Fatalf("unexpected error at %d: %v", i, err)
			}
		}
		if err := p.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
			t.Errorf("expected ErrQueueFull, got %v", err)
		}
	})

	t.Run("should survive panicking and failing tasks", func(t *testing.T) {
		p := NewPool(1, &logger)
		p.Start(context.Background())
		_ = p.Submit(func(ctx context.Context) error { panic("boom") })
		_ = p.Submit(func(ctx context.Context) error { return errors.New("fail") })

		ran := make(chan struct{})
		_ = p.Submit(func(ctx context.Context) error { close(ran); return nil })
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("worker died after a panic")
		}
		p.Stop()
		p.Stop()
	})

	t.Run("stop drains queued tasks", func(t *testing.T) {
		p := NewPool(1, &logger)
		var n int32
		for i := 0; i < 3; i++ {
			_ = p.Submit(func(ctx context.Context) error { atomic.AddInt32(&n, 1); return nil })
		}
		p.Start(context.Background())
		p.Stop()
		if atomic.LoadInt32(&n) != 3 {
			t.Errorf("expected 3 drained tasks, got %d", n)
		}
	})

	t.Run("nil task is rejected", func(t *testing.T) {
		p := NewPool(1, &logger)
		if err := p.Submit(nil); err == nil {
			t.Error("expected error")
		}
	})
}
