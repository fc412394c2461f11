//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockRedis struct {
	mu       sync.Mutex
	counts   map[string]int64
	expires  map[string]time.Duration
	incrErr  error
	expireOK bool
}

func newMockRedis() *mockRedis {
	return &mockRedis{counts: map[string]int64{}, expires: map[string]time.Duration{}, expireOK: true}
}

func (m *mockRedis) Ping(ctx context.Context) error { return nil }
func (m *mockRedis) Close() error                   { return nil }

func (m *mockRedis) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *mockRedis) Expire(ctx context.Context, key string, d time.Duration) error {
	if !m.expireOK {
		return errors.New("expire failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key] = d
	return nil
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("should allow up to the limit then block", func(t *testing.T) {
		m := newMockRedis()
		rl := NewRateLimiter(m)
		rl.now = func() time.Time { return time.Unix(120, 0) }
		key := UserActionKey("u1", "create_order")

		for i := 1; i <= 3; i++ {
			ok, err := rl.Allow(ctx, key, 3, time.Minute)
			if err != nil || !ok {
				t.Fatalf("call %d: expected allowed, got ok=%v err=%v", i, ok, err)
			}
		}
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || ok {
			t.Fatalf("expected 4th call to be blocked, got ok=%v err=%v", ok, err)
		}
		if m.expires[key+":2"] != time.Minute {
			t.Errorf("expected window set on first hit, got %v", m.expires)
		}
	})

	t.Run("should start over in the next window", func(t *testing.T) {
		m := newMockRedis()
		rl := NewRateLimiter(m)
		now := time.Unix(60, 0)
		rl.now = func() time.Time { return now }

		if ok, _ := rl.Allow(ctx, "k", 1, time.Minute); !ok {
			t.Fatal("expected first hit to pass")
		}
		if ok, _ := rl.Allow(ctx, "k", 1, time.Minute); ok {
			t.Fatal("expected second hit in the same window to be blocked")
		}
		now = now.Add(time.Minute)
		if ok, _ := rl.Allow(ctx, "k", 1, time.Minute); !ok {
			t.Fatal("expected a fresh window to pass")
		}
	})

	t.Run("non-positive limit disables limiting", func(t *testing.T) {
		m := newMockRedis()
		ok, err := NewRateLimiter(m).Allow(ctx, "k", 0, time.Minute)
		if err != nil || !ok {
			t.Fatalf("expected allowed, got ok=%v err=%v", ok, err)
		}
		if len(m.counts) != 0 {
			t.Error("redis must not be touched")
		}
	})

	t.Run("should surface client errors", func(t *testing.T) {
		m := newMockRedis()
		m.incrErr = errors.New("down")
		if _, err := NewRateLimiter(m).Allow(ctx, "k", 1, time.Second); err == nil {
			t.Error("expected error")
		}

		m2 := newMockRedis()
		m2.expireOK = false
		if _, err := NewRateLimiter(m2).Allow(ctx, "k", 1, time.Second); err == nil {
			t.Error("expected expire error")
		}
	})

	t.Run("keys are per user and action", func(t *testing.T) {
		if UserActionKey("u1", "a") == UserActionKey("u2", "a") {
			t.Error("keys must differ per user")
		}
	})
}
