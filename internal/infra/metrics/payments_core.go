package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		reconcileStepFailures,
		stalePendingPayments,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (pending/captured/already_captured/not_found).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of captured payments in minor units, labeled by currency.",
		},
		[]string{"currency"},
	)

	reconcileStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_step_failures_total",
			Help: "Store calls that failed during reconciliation, by step.",
		},
		[]string{"step"},
	)

	stalePendingPayments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "payments_stale_pending",
			Help: "Pending payments older than the stale threshold at the last scan.",
		},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncReconcileStepFailure(step string) {
	reconcileStepFailures.WithLabelValues(norm(step)).Inc()
}

func SetStalePendingPayments(n int) {
	stalePendingPayments.Set(float64(n))
}
