package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersTotal,
		orderPersistFailures,
		rateLimitedTotal,
		eventsPublished,
	)
}

var (
	// result: created|missing_params|unknown_plan|not_configured|gateway_error
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Order creation attempts by result.",
		},
		[]string{"result"},
	)

	orderPersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_persist_failures_total",
			Help: "Gateway orders whose pending payment row could not be saved.",
		},
	)

	rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the rate limiter, by route.",
		},
		[]string{"route"},
	)

	// result: ok|error|dropped
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_events_total",
			Help: "Payment events handed to the publisher, by result.",
		},
		[]string{"type", "result"},
	)
)

func IncOrder(result string) {
	ordersTotal.WithLabelValues(norm(result)).Inc()
}

func IncOrderPersistFailure() {
	orderPersistFailures.Inc()
}

func IncRateLimited(route string) {
	rateLimitedTotal.WithLabelValues(route).Inc()
}

func IncEvent(eventType, result string) {
	eventsPublished.WithLabelValues(eventType, norm(result)).Inc()
}
