package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ProviderRequests     *prometheus.CounterVec
	ProviderErrors       *prometheus.CounterVec
	RequestSeconds       *prometheus.HistogramVec
	ElevationCache       *prometheus.CounterVec
	SegmentsResolved     *prometheus.CounterVec
	Reconciliations      *prometheus.CounterVec
	ReconciliationActive prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ProviderRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "runcraft_provider_requests_total",
			Help: "Total number of requests sent to routing and elevation providers.",
		}, []string{"provider"}),
		ProviderErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "runcraft_provider_errors_total",
			Help: "Total number of failed requests to routing and elevation providers.",
		}, []string{"provider"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "runcraft_provider_request_duration_seconds",
			Help:    "Duration of requests to routing and elevation providers.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ElevationCache: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "runcraft_elevation_cache_lookups_total",
			Help: "Elevation cache lookups by result (hit, miss).",
		}, []string{"result"}),
		SegmentsResolved: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "runcraft_segments_resolved_total",
			Help: "Resolved route segments by geometry source (snapped, straight, fallback).",
		}, []string{"mode"}),
		Reconciliations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "runcraft_reconciliations_total",
			Help: "Segment list reconciliations by transition.",
		}, []string{"transition"}),
		ReconciliationActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "runcraft_reconciliation_active",
			Help: "Set to 1 while a reconciliation is fetching segments.",
		}),
	}
}

// ObserveRequest records one provider call. A nil *Metrics is a no-op so providers can run unmetered.
func (m *Metrics) ObserveRequest(provider string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider).Inc()
	m.RequestSeconds.WithLabelValues(provider).Observe(time.Since(started).Seconds())
	if err != nil {
		m.ProviderErrors.WithLabelValues(provider).Inc()
	}
}

// CacheLookups records elevation cache hits and misses for one lookup.
func (m *Metrics) CacheLookups(hits, misses int) {
	if m == nil {
		return
	}
	m.ElevationCache.WithLabelValues("hit").Add(float64(hits))
	m.ElevationCache.WithLabelValues("miss").Add(float64(misses))
}

// SegmentResolved records a resolved segment by its geometry source.
func (m *Metrics) SegmentResolved(mode string) {
	if m == nil {
		return
	}
	m.SegmentsResolved.WithLabelValues(mode).Inc()
}

// Reconciled records a reconciliation transition.
func (m *Metrics) Reconciled(transition string) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(transition).Inc()
}

// SetActive flips the reconciliation activity gauge.
func (m *Metrics) SetActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.ReconciliationActive.Set(1)
		return
	}
	m.ReconciliationActive.Set(0)
}
