package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records catalog traffic, product cache efficiency and cart activity.
type StorefrontMetrics struct {
	catalogDuration *prometheus.HistogramVec
	catalogRequests *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	catalogDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Duration of product API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	catalogRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Product API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_cache_lookups_total",
		Help: "Product cache lookups by result.",
	}, []string{"result"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	reg.MustRegister(catalogDuration, catalogRequests, cacheLookups, cartMutations)
	return &StorefrontMetrics{
		catalogDuration: catalogDuration,
		catalogRequests: catalogRequests,
		cacheLookups:    cacheLookups,
		cartMutations:   cartMutations,
	}
}

// ObserveCatalogRequest records one product API call.
func (m *StorefrontMetrics) ObserveCatalogRequest(endpoint string, duration time.Duration, err error) {
	if m == nil || m.catalogRequests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.catalogDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	m.catalogRequests.WithLabelValues(endpoint, outcome).Inc()
}

// IncCacheHit counts a product served from the cache.
func (m *StorefrontMetrics) IncCacheHit() {
	if m == nil || m.cacheLookups == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts a product that had to be fetched.
func (m *StorefrontMetrics) IncCacheMiss() {
	if m == nil || m.cacheLookups == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// IncCartMutation counts a write-through cart mutation.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
