package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics exposes per-route request instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "learnitnow_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnitnow_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latencies.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// CheckoutMetrics counts checkout and payout outcomes.
type CheckoutMetrics struct {
	sessionsStarted   prometheus.Counter
	finalized         *prometheus.CounterVec
	purchasesGranted  prometheus.Counter
	feeLookupFailures prometheus.Counter
}

func NewCheckoutMetrics() *CheckoutMetrics {
	return &CheckoutMetrics{
		sessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "learnitnow_checkout_sessions_started_total",
			Help: "Checkout sessions created at the payment processor.",
		}),
		finalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "learnitnow_checkout_finalized_total",
			Help: "Finalize attempts by outcome.",
		}, []string{"outcome"}),
		purchasesGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "learnitnow_purchases_granted_total",
			Help: "Purchase records written after confirmed payment.",
		}),
		feeLookupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "learnitnow_fee_lookup_failures_total",
			Help: "Best-effort processing fee lookups that failed during finalize.",
		}),
	}
}

func (m *CheckoutMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *CheckoutMetrics) Finalized(outcome string) {
	if m == nil {
		return
	}
	m.finalized.WithLabelValues(outcome).Inc()
}

func (m *CheckoutMetrics) PurchaseGranted() {
	if m == nil {
		return
	}
	m.purchasesGranted.Inc()
}

func (m *CheckoutMetrics) FeeLookupFailed() {
	if m == nil {
		return
	}
	m.feeLookupFailures.Inc()
}
