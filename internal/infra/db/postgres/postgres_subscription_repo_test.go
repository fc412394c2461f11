//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
)

func TestSubscriptionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewSubscriptionRepo(testPool)
	plan := &model.Plan{ID: "pro", Name: "Pro", Amount: 100, Currency: "INR"}

	t.Run("upsert replaces the window for the same user", func(t *testing.T) {
		cleanup(t)
		first := time.Now().UTC().Truncate(time.Microsecond)
		s1, _ := model.NewActiveSubscription("u1", plan, "razorpay", "pay_1", first)
		if err := repo.Upsert(ctx, nil, s1); err != nil {
			t.Fatalf("first upsert: %v", err)
		}

		second := first.Add(time.Hour)
		s2, _ := model.NewActiveSubscription("u1", plan, "razorpay", "pay_2", second)
		if err := repo.Upsert(ctx, nil, s2); err != nil {
			t.Fatalf("second upsert: %v", err)
		}

		got, err := repo.FindByUser(ctx, nil, "u1")
		if err != nil {
			t.Fatalf("FindByUser failed: %v", err)
		}
		if got.PaymentID != "pay_2" || !got.PeriodEnd.Equal(second.Add(model.SubscriptionPeriod)) {
			t.Errorf("expected second window, got %+v", got)
		}
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByUser(ctx, nil, "nobody"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
