package prometheus

import (
	"sync"

	"github.com/marmos91/davmount/pkg/cache"
	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterCacheMetricsConstructor(newCacheMetrics)
}

// Cache collectors are registered once and shared by every mount; each
// cacheMetrics instance binds the mount label.
var (
	cacheCollectorsOnce sync.Once
	cacheLookups        *prometheus.CounterVec
	cacheListings       *prometheus.GaugeVec
	cacheEntries        *prometheus.GaugeVec
)

func cacheCollectors() {
	reg := metrics.GetRegistry()

	cacheLookups = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "davmount_cache_lookups_total",
			Help: "Total number of metadata cache lookups by mount and status",
		},
		[]string{"mount", "status"}, // status: "hit", "miss"
	)
	cacheListings = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "davmount_cache_listings",
			Help: "Current number of cached directory listings per mount",
		},
		[]string{"mount"},
	)
	cacheEntries = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "davmount_cache_entries",
			Help: "Current number of cached direct-stat entries per mount",
		},
		[]string{"mount"},
	)
}

// cacheMetrics is the Prometheus implementation of cache.CacheMetrics for
// one mount.
type cacheMetrics struct {
	mount string
}

// newCacheMetrics creates a CacheMetrics instance bound to mount.
// Registered with pkg/metrics during package initialization; call
// metrics.NewCacheMetrics() instead of this directly.
func newCacheMetrics(mount string) cache.CacheMetrics {
	cacheCollectorsOnce.Do(cacheCollectors)
	return &cacheMetrics{mount: mount}
}

func (m *cacheMetrics) RecordLookup(hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	cacheLookups.WithLabelValues(m.mount, status).Inc()
}

func (m *cacheMetrics) RecordSizes(listings, entries int) {
	cacheListings.WithLabelValues(m.mount).Set(float64(listings))
	cacheEntries.WithLabelValues(m.mount).Set(float64(entries))
}
