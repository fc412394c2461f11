package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"payment-relay/internal/config"
	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
	"payment-relay/internal/infra/logging"
	"payment-relay/internal/infra/metrics"
	"payment-relay/internal/usecase"
)

const (
	actionCreateOrder  = "create_order"
	defaultStaleAge    = 30 * time.Minute
	defaultStaleLimit  = 100
	maxRequestBodySize = 1 << 20
)

type Server struct {
	orders   usecase.OrderUseCase
	payments usecase.PaymentUseCase
	plans    usecase.PlanUseCase
	auth     *AuthManager
	limiter  Limiter

	limit      int
	window     time.Duration
	timeout    time.Duration
	successURL string
	now        func() time.Time

	log    *zerolog.Logger
	server *http.Server
}

// NewServer builds the HTTP boundary. limiter and auth may be nil.
func NewServer(
	orders usecase.OrderUseCase,
	payments usecase.PaymentUseCase,
	plans usecase.PlanUseCase,
	auth *AuthManager,
	limiter Limiter,
	httpCfg config.HTTPConfig,
	rlCfg config.RateLimitConfig,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "api").Logger()
	return &Server{
		orders:     orders,
		payments:   payments,
		plans:      plans,
		auth:       auth,
		limiter:    limiter,
		limit:      rlCfg.CreateOrderLimit,
		window:     rlCfg.CreateOrderWindow,
		timeout:    httpCfg.HandlerTimeout,
		successURL: httpCfg.SuccessRedirectURL,
		now:        time.Now,
		log:        &l,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), Timeout(s.timeout))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/plans", s.handlePlans)
	r.Post("/api/create-order", s.handleCreateOrder)
	r.Post("/api/verify-payment", s.handleVerifyPayment)
	r.Post("/success", s.handleSuccess)
	r.Handle("/metrics", promhttp.Handler())

	if s.auth.Enabled() {
		r.Route("/api/admin", func(ar chi.Router) {
			ar.Use(s.RequireAdmin)
			ar.Get("/payments/stale", s.handleStalePayments)
			ar.Get("/payments/{orderId}", s.handleGetPayment)
		})
	}
	return r
}

// Start blocks until the server stops. http.ErrServerClosed is not an error.
func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ---- handlers ----

type createOrderRequest struct {
	Plan      string `json:"plan"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Plan      string `json:"plan"`
	UserID    string `json:"userId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plans": s.plans.List(r.Context())})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if !s.allow(r, req.UserID, actionCreateOrder) {
		writeError(w, http.StatusTooManyRequests, "Too many requests", "")
		return
	}

	order, err := s.orders.CreateOrder(r.Context(), model.OrderRequest{
		PlanID:    req.Plan,
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		UserName:  req.UserName,
	})
	if err != nil {
		status, msg, details := statusFor(err)
		if status >= http.StatusInternalServerError {
			l := logging.With(r.Context(), s.log)
			l.Error().Err(err).Str("plan_id", req.Plan).Msg("create order failed")
		}
		writeError(w, status, msg, details)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req verifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.ObserveVerify(false, "bad_request", time.Since(start))
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	res, err := s.payments.Reconcile(r.Context(), model.ReconcileRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		PlanID:    req.Plan,
		UserID:    req.UserID,
	})
	if err != nil {
		metrics.ObserveVerify(false, reasonFor(err), time.Since(start))
		status, msg, details := statusFor(err)
		if status == http.StatusBadRequest {
			// Do not tell a caller which check its callback failed.
			msg, details = "Payment verification failed", ""
			if errors.Is(err, domain.ErrMissingParameters) {
				msg = "Missing required parameters"
			}
		}
		writeError(w, status, msg, details)
		return
	}
	metrics.ObserveVerify(true, "", time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

// handleSuccess serves the gateway's browser redirect. It always redirects,
// whatever reconciliation returned.
func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_ = r.ParseForm()
	field := func(k string) string {
		if v := r.PostForm.Get(k); v != "" {
			return v
		}
		return r.URL.Query().Get(k)
	}
	req := model.ReconcileRequest{
		OrderID:   field("razorpay_order_id"),
		PaymentID: field("razorpay_payment_id"),
		Signature: field("razorpay_signature"),
		PlanID:    field("plan"),
		UserID:    field("userId"),
	}

	res, err := s.payments.Reconcile(r.Context(), req)
	l := logging.With(r.Context(), s.log)
	if err != nil {
		metrics.ObserveVerify(false, reasonFor(err), time.Since(start))
		l.Warn().Err(err).Str("order_id", req.OrderID).Msg("success callback did not reconcile")
	} else {
		metrics.ObserveVerify(true, "", time.Since(start))
		l.Info().Str("order_id", res.OrderID).Str("outcome", string(res.PaymentOutcome)).
			Bool("degraded", res.Degraded).Msg("success callback reconciled")
	}

	http.Redirect(w, r, s.successLocation(req), http.StatusSeeOther)
}

func (s *Server) successLocation(req model.ReconcileRequest) string {
	u, err := url.Parse(s.successURL)
	if err != nil {
		u = &url.URL{Path: "/success.html"}
	}
	q := u.Query()
	q.Set("paymentId", req.PaymentID)
	q.Set("orderId", req.OrderID)
	q.Set("signature", req.Signature)
	q.Set("plan", req.PlanID)
	u.RawQuery = q.Encode()
	return u.String()
}

type paymentView struct {
	OrderID    string                 `json:"orderId"`
	UserID     string                 `json:"userId"`
	Provider   string                 `json:"provider"`
	Amount     int64                  `json:"amount"`
	Currency   string                 `json:"currency"`
	PlanID     string                 `json:"plan"`
	Status     model.PaymentStatus    `json:"status"`
	PaymentID  *string                `json:"paymentId,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
	CapturedAt *time.Time             `json:"capturedAt,omitempty"`
}

func toPaymentView(p *model.Payment) paymentView {
	return paymentView{
		OrderID:    p.OrderID,
		UserID:     p.UserID,
		Provider:   p.Provider,
		Amount:     p.Amount,
		Currency:   p.Currency,
		PlanID:     p.PlanID,
		Status:     p.Status,
		PaymentID:  p.PaymentID,
		Meta:       p.Meta,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		CapturedAt: p.CapturedAt,
	}
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters", "userId")
		return
	}
	p, err := s.payments.Lookup(r.Context(), orderID, userID)
	if err != nil {
		status, msg, details := statusFor(err)
		writeError(w, status, msg, details)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(p))
}

func (s *Server) handleStalePayments(w http.ResponseWriter, r *http.Request) {
	olderThan := defaultStaleAge
	if v := r.URL.Query().Get("older_than"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid older_than", v)
			return
		}
		olderThan = d
	}
	limit := defaultStaleLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", v)
			return
		}
		limit = n
	}

	list, err := s.payments.ListStale(r.Context(), olderThan, limit)
	if err != nil {
		status, msg, details := statusFor(err)
		writeError(w, status, msg, details)
		return
	}
	out := make([]paymentView, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out, "total": len(out)})
}

// ---- errors ----

// statusFor maps use case errors to an HTTP status, a client message and
// optional details.
func statusFor(err error) (int, string, string) {
	var gerr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrMissingParameters):
		return http.StatusBadRequest, "Missing required parameters", err.Error()
	case errors.Is(err, domain.ErrUnknownPlan):
		return http.StatusBadRequest, "Invalid plan", ""
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, "Invalid payment signature", ""
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "Invalid argument", ""
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found", ""
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, "Payment gateway not configured", ""
	case errors.As(err, &gerr):
		return http.StatusInternalServerError, "Failed to create order", gerr.Message
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Store unavailable", ""
	}
	return http.StatusInternalServerError, "Internal server error", ""
}

// reasonFor is the metric reason of a failed verification.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingParameters):
		return "missing_params"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, domain.ErrUnknownPlan):
		return "unknown_plan"
	}
	return "internal"
}

// ---- helpers ----

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodySize)).Decode(dst)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
