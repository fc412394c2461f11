//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
	"payment-relay/internal/domain/ports/adapter"
	"payment-relay/internal/domain/ports/repository"
)

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway (adapter) ----

type MockPaymentGateway struct {
	mu    sync.Mutex
	Calls []adapter.GatewayOrderRequest

	ConfiguredFunc  func() bool
	CreateOrderFunc func(ctx context.Context, req adapter.GatewayOrderRequest) (*adapter.GatewayOrder, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string  { return "mockpay" }
func (m *MockPaymentGateway) KeyID() string { return "rzp_test_key" }

func (m *MockPaymentGateway) Configured() bool {
	if m.ConfiguredFunc != nil {
		return m.ConfiguredFunc()
	}
	return true
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req adapter.GatewayOrderRequest) (*adapter.GatewayOrder, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	n := len(m.Calls)
	m.mu.Unlock()
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, req)
	}
	return &adapter.GatewayOrder{
		ID:       fmt.Sprintf("order_%d", n),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (m *MockPaymentGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ---- Mock EventPublisher ----

type MockPublisher struct {
	mu     sync.Mutex
	Events []adapter.PaymentEvent

	PublishFunc func(ctx context.Context, ev adapter.PaymentEvent) error
}

var _ adapter.EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, ev adapter.PaymentEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return nil
}

// =============================
// Repositories
// =============================

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.Mutex
	data  map[string]*model.Payment // by order|user
	calls int

	SaveFunc                 func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	FindByOrderFunc          func(ctx context.Context, tx repository.Tx, orderID, userID string) (*model.Payment, error)
	MarkCapturedFunc         func(ctx context.Context, tx repository.Tx, orderID, userID, paymentID, signature string, at time.Time) (bool, error)
	ListPendingOlderThanFunc func(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.Payment{}}
}

func paymentKey(orderID, userID string) string { return orderID + "|" + userID }

func (r *MockPaymentRepo) touch() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *MockPaymentRepo) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	r.touch()
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := paymentKey(p.OrderID, p.UserID)
	if _, exists := r.data[k]; exists {
		return nil
	}
	cp := *p
	r.data[k] = &cp
	return nil
}

func (r *MockPaymentRepo) FindByOrder(ctx context.Context, tx repository.Tx, orderID, userID string) (*model.Payment, error) {
	r.touch()
	if r.FindByOrderFunc != nil {
		return r.FindByOrderFunc(ctx, tx, orderID, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[paymentKey(orderID, userID)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) MarkCaptured(ctx context.Context, tx repository.Tx, orderID, userID, paymentID, signature string, at time.Time) (bool, error) {
	r.touch()
	if r.MarkCapturedFunc != nil {
		return r.MarkCapturedFunc(ctx, tx, orderID, userID, paymentID, signature, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[paymentKey(orderID, userID)]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = model.PaymentStatusCaptured
	p.PaymentID = &paymentID
	p.Signature = &signature
	p.CapturedAt = &at
	p.UpdatedAt = at
	return true, nil
}

func (r *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	r.touch()
	if r.ListPendingOlderThanFunc != nil {
		return r.ListPendingOlderThanFunc(ctx, tx, olderThan, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu    sync.Mutex
	data  map[string]*model.Subscription
	calls int

	UpsertFunc func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{data: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *MockSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.data[s.UserID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.data[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock ProfileRepository ----

type MockProfileRepo struct {
	mu    sync.Mutex
	plans map[string]string // user id -> plan
	calls int

	UpdatePlanFunc func(ctx context.Context, tx repository.Tx, userID, planID string) (bool, error)
}

var _ repository.ProfileRepository = (*MockProfileRepo)(nil)

func NewMockProfileRepo(users ...string) *MockProfileRepo {
	r := &MockProfileRepo{plans: map[string]string{}}
	for _, u := range users {
		r.plans[u] = "free"
	}
	return r
}

func (r *MockProfileRepo) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *MockProfileRepo) Plan(userID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plans[userID]
}

func (r *MockProfileRepo) UpdatePlan(ctx context.Context, tx repository.Tx, userID, planID string) (bool, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.UpdatePlanFunc != nil {
		return r.UpdatePlanFunc(ctx, tx, userID, planID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[userID]; !ok {
		return false, nil
	}
	r.plans[userID] = planID
	return true, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock SignatureVerifier ----

type MockVerifier struct {
	OK bool
}

func (m MockVerifier) Verify(orderID, paymentID, signature string) bool { return m.OK }

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
