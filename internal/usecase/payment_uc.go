// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
	"payment-relay/internal/domain/ports/adapter"
	"payment-relay/internal/domain/ports/repository"
	"payment-relay/internal/infra/logging"
	"payment-relay/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// Reconcile verifies a signed callback and moves payment, subscription and
	// profile into the captured/active state.
	Reconcile(ctx context.Context, req model.ReconcileRequest) (*model.ReconciliationResult, error)
	// Lookup returns the stored payment for manual reconciliation.
	Lookup(ctx context.Context, orderID, userID string) (*model.Payment, error)
	// ListStale returns pending payments created more than olderThan ago.
	ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]*model.Payment, error)
}

type paymentUC struct {
	catalog   repository.PlanCatalog
	verifier  adapter.SignatureVerifier
	payments  repository.PaymentRepository
	subs      repository.SubscriptionRepository
	profiles  repository.ProfileRepository
	tm        repository.TransactionManager
	publisher adapter.EventPublisher
	provider  string
	opts      options
	logger    *zerolog.Logger
}

// NewPaymentUseCase wires reconciliation. tm is only used in transactional
// mode and publisher may be nil.
func NewPaymentUseCase(
	catalog repository.PlanCatalog,
	verifier adapter.SignatureVerifier,
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	profiles repository.ProfileRepository,
	tm repository.TransactionManager,
	publisher adapter.EventPublisher,
	provider string,
	logger *zerolog.Logger,
	opts ...Option,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUseCase").Logger()
	return &paymentUC{
		catalog:   catalog,
		verifier:  verifier,
		payments:  payments,
		subs:      subs,
		profiles:  profiles,
		tm:        tm,
		publisher: publisher,
		provider:  provider,
		opts:      buildOptions(opts),
		logger:    &l,
	}
}

// reconcileStep is one store call of the capture sequence.
type reconcileStep struct {
	name domain.PersistenceStep
	run  func(ctx context.Context, tx repository.Tx) error
}

func (u *paymentUC) Reconcile(ctx context.Context, req model.ReconcileRequest) (*model.ReconciliationResult, error) {
	defer logging.TraceDuration(u.logger, "PaymentUC.Reconcile")()

	if missing := req.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingParameters, strings.Join(missing, ", "))
	}
	ctx = logging.WithOrderID(logging.WithUserID(ctx, req.UserID), req.OrderID)
	log := logging.With(ctx, u.logger)

	if u.verifier == nil || !u.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		log.Warn().
			Str("event", "invalid_signature").
			Str("payment_id", req.PaymentID).
			Str("signature", logging.Redact(req.Signature, false)).
			Msg("payment signature rejected")
		return nil, domain.ErrInvalidSignature
	}

	plan, err := u.catalog.Lookup(req.PlanID)
	if err != nil {
		return nil, err
	}

	now := u.opts.now().UTC()
	sub, err := model.NewActiveSubscription(req.UserID, plan, u.provider, req.PaymentID, now)
	if err != nil {
		return nil, err
	}

	res := &model.ReconciliationResult{
		OrderID:        req.OrderID,
		PaymentID:      req.PaymentID,
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		Amount:         plan.Amount,
		Currency:       plan.Currency,
		UserID:         req.UserID,
		Timestamp:      now,
		PaymentOutcome: model.PaymentOutcomeUnknown,
	}

	steps := []reconcileStep{
		{domain.StepPaymentUpdate, func(ctx context.Context, tx repository.Tx) error {
			outcome, err := u.capturePayment(ctx, tx, req, now)
			res.PaymentOutcome = outcome
			return err
		}},
		{domain.StepSubscriptionUpsert, func(ctx context.Context, tx repository.Tx) error {
			return u.subs.Upsert(ctx, tx, sub)
		}},
		{domain.StepProfileUpdate, func(ctx context.Context, tx repository.Tx) error {
			ok, err := u.profiles.UpdatePlan(ctx, tx, req.UserID, plan.ID)
			if err == nil && !ok {
				log.Warn().Msg("profile not found; plan not updated")
			}
			return err
		}},
	}

	// Writes ignore the caller's cancellation; each store call has its own timeout.
	ctx = context.WithoutCancel(ctx)
	if u.opts.transactional && u.tm != nil {
		u.runTransactional(ctx, log, res, steps)
	} else {
		u.runSequential(ctx, log, res, steps)
	}
	res.Degraded = len(res.Failures) == len(steps)

	u.afterCapture(ctx, log, res)
	return res, nil
}

// runSequential executes every step; a failing step is recorded and the
// next one still runs.
func (u *paymentUC) runSequential(ctx context.Context, log *zerolog.Logger, res *model.ReconciliationResult, steps []reconcileStep) {
	for _, s := range steps {
		if err := u.runStep(ctx, nil, s); err != nil {
			res.Failures = append(res.Failures, u.stepFailure(log, res, s.name, err))
		}
	}
}

// runTransactional executes the steps in one transaction and stops at the
// first failure. Every other step is reported as rolled back.
func (u *paymentUC) runTransactional(ctx context.Context, log *zerolog.Logger, res *model.ReconciliationResult, steps []reconcileStep) {
	failedAt := -1
	// Begin and commit count as store calls too: one budget per step plus one.
	tctx, cancel := context.WithTimeout(ctx, u.opts.storeTimeout*time.Duration(len(steps)+1))
	defer cancel()
	err := u.tm.WithTx(tctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		for i, s := range steps {
			if err := u.runStep(ctx, tx, s); err != nil {
				failedAt = i
				return err
			}
		}
		return nil
	})
	if err == nil {
		return
	}

	res.PaymentOutcome = model.PaymentOutcomeUnknown
	for i, s := range steps {
		if i == failedAt || failedAt < 0 {
			// failedAt < 0: begin or commit failed, so every step shares the error.
			f := u.stepFailure(log, res, s.name, err)
			f.RolledBack = failedAt < 0
			res.Failures = append(res.Failures, f)
			continue
		}
		res.Failures = append(res.Failures, model.StepFailure{
			Step:       s.name,
			Error:      "rolled back",
			RolledBack: true,
			Err:        err,
		})
	}
}

func (u *paymentUC) runStep(ctx context.Context, tx repository.Tx, s reconcileStep) error {
	sctx, cancel := context.WithTimeout(ctx, u.opts.storeTimeout)
	defer cancel()
	return s.run(sctx, tx)
}

func (u *paymentUC) stepFailure(log *zerolog.Logger, res *model.ReconciliationResult, step domain.PersistenceStep, err error) model.StepFailure {
	perr := &domain.PersistenceError{Step: step, OrderID: res.OrderID, UserID: res.UserID, Err: err}
	metrics.IncReconcileStepFailure(string(step))
	log.Error().Err(err).Str("step", string(step)).Str("payment_id", res.PaymentID).Msg("reconciliation step failed")
	return model.StepFailure{Step: step, Error: perr.Error(), Err: perr}
}

// capturePayment updates the pending row and, when nothing changed, looks the
// row up to tell a replayed callback from an order that was never recorded.
func (u *paymentUC) capturePayment(ctx context.Context, tx repository.Tx, req model.ReconcileRequest, now time.Time) (model.PaymentOutcome, error) {
	updated, err := u.payments.MarkCaptured(ctx, tx, req.OrderID, req.UserID, req.PaymentID, req.Signature, now)
	if err != nil {
		return model.PaymentOutcomeUnknown, err
	}
	if updated {
		return model.PaymentOutcomeCaptured, nil
	}

	p, err := u.payments.FindByOrder(ctx, tx, req.OrderID, req.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound) || (err == nil && p == nil):
		return model.PaymentOutcomeNotFound, nil
	case err != nil && tx != nil:
		// A failed statement aborts the transaction; report it on this step.
		return model.PaymentOutcomeUnknown, err
	case err != nil:
		logging.With(ctx, u.logger).Warn().Err(err).Msg("payment lookup after no-op capture failed")
		return model.PaymentOutcomeUnknown, nil
	case p.Status == model.PaymentStatusCaptured:
		return model.PaymentOutcomeAlreadyCaptured, nil
	}
	return model.PaymentOutcomeUnknown, nil
}

func (u *paymentUC) afterCapture(ctx context.Context, log *zerolog.Logger, res *model.ReconciliationResult) {
	switch res.PaymentOutcome {
	case model.PaymentOutcomeCaptured:
		metrics.IncPayment(string(model.PaymentStatusCaptured))
		metrics.AddPaymentRevenue(res.Currency, res.Amount)
	case model.PaymentOutcomeAlreadyCaptured:
		metrics.IncPayment(string(res.PaymentOutcome))
		// Replayed callback; the first one already emitted the event.
		log.Info().Msg("payment already captured")
		return
	case model.PaymentOutcomeNotFound:
		metrics.IncPayment(string(res.PaymentOutcome))
	default:
		// Capture failed or was rolled back.
		metrics.IncPayment(string(res.PaymentOutcome))
		log.Warn().Bool("degraded", res.Degraded).Msg("capture not recorded; payment event skipped")
		return
	}

	if u.publisher == nil {
		return
	}
	ev := adapter.PaymentEvent{
		ID:         ulid.Make().String(),
		Type:       adapter.EventPaymentCaptured,
		OrderID:    res.OrderID,
		PaymentID:  res.PaymentID,
		UserID:     res.UserID,
		PlanID:     res.PlanID,
		Amount:     res.Amount,
		Currency:   res.Currency,
		Degraded:   res.Degraded,
		OccurredAt: res.Timestamp,
	}
	if err := u.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event_id", ev.ID).Msg("payment event not published")
	}
}

func (u *paymentUC) Lookup(ctx context.Context, orderID, userID string) (*model.Payment, error) {
	if orderID == "" || userID == "" {
		return nil, domain.ErrMissingParameters
	}
	sctx, cancel := context.WithTimeout(ctx, u.opts.storeTimeout)
	defer cancel()
	return u.payments.FindByOrder(sctx, nil, orderID, userID)
}

func (u *paymentUC) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]*model.Payment, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("%w: olderThan must be positive", domain.ErrInvalidArgument)
	}
	sctx, cancel := context.WithTimeout(ctx, u.opts.storeTimeout)
	defer cancel()
	return u.payments.ListPendingOlderThan(sctx, nil, u.opts.now().Add(-olderThan), limit)
}
