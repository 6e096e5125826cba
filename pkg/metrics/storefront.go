package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorefrontMetrics counts cart activity and local storage failures.
type StorefrontMetrics struct {
	cartMutations   *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	orders          prometheus.Counter
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart operations by outcome.",
	}, []string{"outcome"})
	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_write_failures_total",
		Help: "Failed writes to local storage by key.",
	}, []string{"key"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Mock orders confirmed at checkout.",
	})
	reg.MustRegister(cartMutations, storageFailures, orders)
	return &StorefrontMetrics{
		cartMutations:   cartMutations,
		storageFailures: storageFailures,
		orders:          orders,
	}
}

// IncCartMutation counts a cart operation outcome (added, capped, removed, ...).
func (s *StorefrontMetrics) IncCartMutation(outcome string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncStorageFailure counts a failed write for the given storage key.
func (s *StorefrontMetrics) IncStorageFailure(key string) {
	if s == nil || s.storageFailures == nil {
		return
	}
	s.storageFailures.WithLabelValues(normalizeLabel(key)).Inc()
}

// IncOrderPlaced counts a confirmed checkout.
func (s *StorefrontMetrics) IncOrderPlaced() {
	if s == nil || s.orders == nil {
		return
	}
	s.orders.Inc()
}
