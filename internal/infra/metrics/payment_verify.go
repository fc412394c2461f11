package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentVerifyRequests,
		paymentVerifyDuration,
	)
}

var (
	// result: ok|fail
	// reason (fail only): bad_request|missing_params|invalid_signature|unknown_plan|internal
	paymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of payment verification calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	paymentVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of payment verification handlers in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)
)

// ObserveVerify records one verification call. reason is ignored for ok results.
func ObserveVerify(ok bool, reason string, elapsed time.Duration) {
	result := "ok"
	if !ok {
		result = "fail"
	} else {
		reason = ""
	}
	paymentVerifyRequests.WithLabelValues(result, norm(reason)).Inc()
	paymentVerifyDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}
