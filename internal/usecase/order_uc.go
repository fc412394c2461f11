// File: internal/usecase/order_uc.go
package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
	"payment-relay/internal/domain/ports/adapter"
	"payment-relay/internal/domain/ports/repository"
	"payment-relay/internal/infra/logging"
	"payment-relay/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

const maxReceiptLen = 40

type OrderUseCase interface {
	// CreateOrder creates a gateway order for a catalog plan and records it as pending.
	CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error)
}

type orderUC struct {
	catalog  repository.PlanCatalog
	gateway  adapter.PaymentGateway
	payments repository.PaymentRepository
	opts     options
	logger   *zerolog.Logger
}

// NewOrderUseCase wires order creation. payments may be nil, in which case
// orders are created but never persisted.
func NewOrderUseCase(catalog repository.PlanCatalog, gateway adapter.PaymentGateway, payments repository.PaymentRepository, logger *zerolog.Logger, opts ...Option) *orderUC {
	l := logger.With().Str("component", "OrderUseCase").Logger()
	return &orderUC{
		catalog:  catalog,
		gateway:  gateway,
		payments: payments,
		opts:     buildOptions(opts),
		logger:   &l,
	}
}

func (u *orderUC) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	defer logging.TraceDuration(u.logger, "OrderUC.CreateOrder")()

	if req.PlanID == "" || req.UserID == "" {
		metrics.IncOrder("missing_params")
		return nil, domain.ErrMissingParameters
	}
	if u.gateway == nil || !u.gateway.Configured() {
		metrics.IncOrder("not_configured")
		return nil, domain.ErrConfiguration
	}
	plan, err := u.catalog.Lookup(req.PlanID)
	if err != nil {
		metrics.IncOrder("unknown_plan")
		return nil, err
	}

	ctx = logging.WithUserID(ctx, req.UserID)
	now := u.opts.now()
	gwOrder, err := u.gateway.CreateOrder(ctx, adapter.GatewayOrderRequest{
		Amount:   plan.Amount,
		Currency: plan.Currency,
		Receipt:  BuildReceipt(plan.ID, req.UserID, now),
		Notes:    orderNotes(plan, req),
	})
	if err != nil {
		metrics.IncOrder("gateway_error")
		logging.With(ctx, u.logger).Error().Err(err).Str("plan_id", plan.ID).Msg("gateway order creation failed")
		var gerr *domain.GatewayError
		if errors.As(err, &gerr) || errors.Is(err, domain.ErrConfiguration) {
			return nil, err
		}
		return nil, &domain.GatewayError{Err: err}
	}

	order := &model.Order{
		ID:              gwOrder.ID,
		Amount:          gwOrder.Amount,
		Currency:        gwOrder.Currency,
		Receipt:         gwOrder.Receipt,
		Status:          gwOrder.Status,
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		PlanDescription: plan.Description,
		KeyID:           u.gateway.KeyID(),
	}
	metrics.IncOrder("created")
	metrics.IncPayment(string(model.PaymentStatusPending))

	order.Persisted = u.persist(logging.WithOrderID(ctx, order.ID), order, req.UserID, now)
	return order, nil
}

// persist saves the pending payment. Failures are logged and counted only.
func (u *orderUC) persist(ctx context.Context, order *model.Order, userID string, now time.Time) bool {
	if u.payments == nil {
		return false
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.opts.storeTimeout)
	defer cancel()

	p := model.NewPendingPayment(order, userID, u.gateway.Name(), now)
	if err := u.payments.Save(sctx, nil, p); err != nil {
		metrics.IncOrderPersistFailure()
		perr := &domain.PersistenceError{Step: domain.StepPaymentInsert, OrderID: order.ID, UserID: userID, Err: err}
		logging.With(ctx, u.logger).Error().Err(perr).Str("step", string(perr.Step)).Msg("pending payment not saved")
		return false
	}
	return true
}

func orderNotes(plan *model.Plan, req model.OrderRequest) map[string]string {
	notes := map[string]string{
		"plan_id":   plan.ID,
		"plan_name": plan.Name,
		"user_id":   req.UserID,
	}
	if req.UserEmail != "" {
		notes["user_email"] = req.UserEmail
	}
	if req.UserName != "" {
		notes["user_name"] = req.UserName
	}
	return notes
}

// BuildReceipt returns "rcpt_<plan>_<first 10 chars of user>_<unix ms>" cut
// to the gateway's 40 character limit.
func BuildReceipt(planID, userID string, now time.Time) string {
	user := []rune(userID)
	if len(user) > 10 {
		user = user[:10]
	}
	r := []rune("rcpt_" + planID + "_" + string(user) + "_" + strconv.FormatInt(now.UnixMilli(), 10))
	if len(r) > maxReceiptLen {
		r = r[:maxReceiptLen]
	}
	return string(r)
}
