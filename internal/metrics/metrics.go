// Package metrics exposes Prometheus counters for the map backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Collector bundles the service's Prometheus metrics
type Collector struct {
	DatasetLoads    prometheus.Counter
	DatasetFeatures prometheus.Gauge
	SummaryHits     prometheus.Counter
	SummaryMisses   prometheus.Counter
	SummaryFailures prometheus.Counter
	StaleDiscards   prometheus.Counter
}

// NewCollector registers the metrics against the given registerer,
// defaulting to the global registry when nil
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		DatasetLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronomap_dataset_loads_total",
			Help: "Total number of dataset load attempts that committed.",
		}),
		DatasetFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chronomap_dataset_features",
			Help: "Point features in the current collection.",
		}),
		SummaryHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronomap_summary_cache_hits_total",
			Help: "Summary lookups served from the cache.",
		}),
		SummaryMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronomap_summary_cache_misses_total",
			Help: "Summary lookups that went upstream.",
		}),
		SummaryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronomap_summary_fetch_failures_total",
			Help: "Upstream summary fetches that degraded to a bare link.",
		}),
		StaleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronomap_popup_stale_discards_total",
			Help: "Popup summary results discarded because the page was superseded.",
		}),
	}

	reg.MustRegister(
		c.DatasetLoads,
		c.DatasetFeatures,
		c.SummaryHits,
		c.SummaryMisses,
		c.SummaryFailures,
		c.StaleDiscards,
	)
	return c
}

// Handler returns the /metrics scrape handler
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
