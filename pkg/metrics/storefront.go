package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// StorefrontMetrics records cart, checkout and catalog activity.
type StorefrontMetrics struct {
	cartMutations       *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	orderSubmissions    *prometheus.CounterVec
	catalogDuration     *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided
// registerer. A nil registerer yields a recorder that drops everything.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations applied, by operation.",
	}, []string{"op"})
	persistenceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_persistence_failures_total",
		Help:      "Failed reads or writes of the durable cart blob.",
	}, []string{"op"})
	orderSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_submissions_total",
		Help:      "Order submissions by outcome.",
	}, []string{"outcome"})
	catalogDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_request_duration_seconds",
		Help:      "Duration of catalog API operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "result"})
	reg.MustRegister(cartMutations, persistenceFailures, orderSubmissions, catalogDuration)
	return &StorefrontMetrics{
		cartMutations:       cartMutations,
		persistenceFailures: persistenceFailures,
		orderSubmissions:    orderSubmissions,
		catalogDuration:     catalogDuration,
	}
}

// IncCartMutation counts one applied cart mutation.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncPersistenceFailure counts a failed durable read or write.
func (m *StorefrontMetrics) IncPersistenceFailure(op string) {
	if m == nil || m.persistenceFailures == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncOrderSubmission counts a finished order submission.
func (m *StorefrontMetrics) IncOrderSubmission(outcome string) {
	if m == nil || m.orderSubmissions == nil {
		return
	}
	m.orderSubmissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCatalogCall records the latency of a catalog operation.
func (m *StorefrontMetrics) ObserveCatalogCall(op string, duration time.Duration, err error) {
	if m == nil || m.catalogDuration == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.catalogDuration.WithLabelValues(normalizeLabel(op), result).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
