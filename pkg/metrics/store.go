package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records checkout and authentication activity.
type StoreMetrics struct {
	ordersPlaced     *prometheus.CounterVec
	revenue          *prometheus.CounterVec
	checkoutRejected *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	authAttempts     *prometheus.CounterVec
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodstore_orders_placed_total",
		Help: "Orders committed, by payment method.",
	}, []string{"payment_method"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodstore_order_revenue_total",
		Help: "Sum of committed order totals, by payment method.",
	}, []string{"payment_method"})
	checkoutRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodstore_checkout_rejected_total",
		Help: "Checkout attempts rejected, by reason.",
	}, []string{"reason"})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodstore_checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	authAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodstore_auth_attempts_total",
		Help: "Signup and login attempts, by action and result.",
	}, []string{"action", "result"})
	reg.MustRegister(ordersPlaced, revenue, checkoutRejected, checkoutDuration, authAttempts)
	return &StoreMetrics{
		ordersPlaced:     ordersPlaced,
		revenue:          revenue,
		checkoutRejected: checkoutRejected,
		checkoutDuration: checkoutDuration,
		authAttempts:     authAttempts,
	}
}

// OrderPlaced counts a committed order and adds its total to revenue.
func (m *StoreMetrics) OrderPlaced(paymentMethod string, total float64) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	label := normalizeLabel(paymentMethod)
	m.ordersPlaced.WithLabelValues(label).Inc()
	if total > 0 {
		m.revenue.WithLabelValues(label).Add(total)
	}
}

// CheckoutRejected counts a checkout that did not commit.
func (m *StoreMetrics) CheckoutRejected(reason string) {
	if m == nil || m.checkoutRejected == nil {
		return
	}
	m.checkoutRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveCheckout records how long a checkout attempt took.
func (m *StoreMetrics) ObserveCheckout(duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.Observe(duration.Seconds())
}

// AuthAttempt counts a signup/login outcome.
func (m *StoreMetrics) AuthAttempt(action, result string) {
	if m == nil || m.authAttempts == nil {
		return
	}
	m.authAttempts.WithLabelValues(normalizeLabel(action), normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
