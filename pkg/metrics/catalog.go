package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records outbound starship catalog traffic. It satisfies swapi.Observer.
type CatalogMetrics struct {
	fetches  *prometheus.CounterVec
	pages    prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetch_total",
		Help: "Catalog fetches by outcome.",
	}, []string{"outcome"})
	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_pages_fetched_total",
		Help: "Catalog pages retrieved while following pagination.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Duration of complete catalog fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(fetches, pages, duration)
	return &CatalogMetrics{
		fetches:  fetches,
		pages:    pages,
		duration: duration,
	}
}

// ObservePage counts one retrieved page.
func (c *CatalogMetrics) ObservePage() {
	if c == nil || c.pages == nil {
		return
	}
	c.pages.Inc()
}

// ObserveFetch records a finished fetch.
func (c *CatalogMetrics) ObserveFetch(outcome string, duration time.Duration) {
	if c == nil || c.fetches == nil {
		return
	}
	label := normalizeLabel(outcome)
	c.fetches.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
