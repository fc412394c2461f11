//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"payment-relay/internal/domain/model"
	"payment-relay/internal/infra/payment"
	"payment-relay/internal/usecase"
)

// TestOrderToCaptureFlow drives an order from creation to an active subscription.
func TestOrderToCaptureFlow(t *testing.T) {
	ctx := context.Background()
	deps := newPaymentUCDeps()
	cat := newTestCatalog(t)
	logger := newTestLogger()

	orders := usecase.NewOrderUseCase(cat, &MockPaymentGateway{}, deps.payments, logger, usecase.WithClock(fixedClock))
	payments := usecase.NewPaymentUseCase(cat, payment.NewSignatureVerifier(testSecret),
		deps.payments, deps.subs, deps.profiles, deps.tm, deps.publisher, "razorpay", logger)

	// --- Act: create ---
	order, err := orders.CreateOrder(ctx, model.OrderRequest{PlanID: "pro", UserID: "u1"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Amount != 100 || order.Currency != "INR" {
		t.Fatalf("unexpected order: %+v", order)
	}
	pending, err := deps.payments.FindByOrder(ctx, nil, order.ID, "u1")
	if err != nil || pending.Status != model.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %v %+v", err, pending)
	}

	// --- Act: reconcile ---
	start := time.Now()
	res, err := payments.Reconcile(ctx, signedRequest(order.ID, "pay_1", "pro", "u1"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	// --- Assert ---
	if res.PaymentOutcome != model.PaymentOutcomeCaptured || !res.Persisted() {
		t.Fatalf("unexpected result: %+v", res)
	}
	captured, _ := deps.payments.FindByOrder(ctx, nil, order.ID, "u1")
	if captured.Status != model.PaymentStatusCaptured || captured.PaymentID == nil || *captured.PaymentID != "pay_1" {
		t.Errorf("expected captured payment, got %+v", captured)
	}
	sub, err := deps.subs.FindByUser(ctx, nil, "u1")
	if err != nil {
		t.Fatalf("expected subscription: %v", err)
	}
	wantEnd := start.Add(30 * 24 * time.Hour)
	if sub.PlanID != "pro" || sub.Status != model.SubscriptionStatusActive {
		t.Errorf("unexpected subscription: %+v", sub)
	}
	if d := sub.PeriodEnd.Sub(wantEnd); d < -time.Minute || d > time.Minute {
		t.Errorf("period end %v not within a minute of %v", sub.PeriodEnd, wantEnd)
	}
	if deps.profiles.Plan("u1") != "pro" {
		t.Errorf("expected profile plan pro, got %q", deps.profiles.Plan("u1"))
	}
}
