package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for crawling and bundle analysis.
type Metrics struct {
	Registry              *prometheus.Registry
	RequestsTotal         *prometheus.CounterVec
	RequestDuration       prometheus.Histogram
	ErrorsTotal           *prometheus.CounterVec
	IdentityCacheLookups  *prometheus.CounterVec
	ShopLookupsTotal      *prometheus.CounterVec
	SamplingShortCircuits prometheus.Counter
	AnalysesTotal         prometheus.Counter
	AnalysisDuration      prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbundle_requests_total",
			Help: "Total requests issued to the origin by operation.",
		},
		[]string{"operation"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookbundle_request_duration_seconds",
			Help:    "Latency of origin requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbundle_errors_total",
			Help: "Total origin request errors by type.",
		},
		[]string{"error_type"},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbundle_identity_cache_lookups_total",
			Help: "Identity cache lookups by result.",
		},
		[]string{"result"},
	)
	shopLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbundle_shop_lookups_total",
			Help: "Seller shop verification lookups by outcome.",
		},
		[]string{"outcome"},
	)
	shortCircuits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookbundle_sampling_short_circuits_total",
			Help: "Sellers whose unknown books were abandoned after an empty sample.",
		},
	)
	analyses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookbundle_analyses_total",
			Help: "Completed bundle analyses.",
		},
	)
	analysisDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookbundle_analysis_duration_seconds",
			Help:    "Wall-clock time of bundle analyses.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	registry.MustRegister(requests, requestDuration, errorsTotal, cacheLookups, shopLookups, shortCircuits, analyses, analysisDuration)

	return &Metrics{
		Registry:              registry,
		RequestsTotal:         requests,
		RequestDuration:       requestDuration,
		ErrorsTotal:           errorsTotal,
		IdentityCacheLookups:  cacheLookups,
		ShopLookupsTotal:      shopLookups,
		SamplingShortCircuits: shortCircuits,
		AnalysesTotal:         analyses,
		AnalysisDuration:      analysisDuration,
	}
}

// IncRequest increments the requests counter for an operation.
func (m *Metrics) IncRequest(operation string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation).Inc()
}

// ObserveDuration records an origin request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncCacheLookup records an identity cache hit or miss.
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.IdentityCacheLookups.WithLabelValues(result).Inc()
}

// IncShopLookup records the outcome of one shop verification lookup.
func (m *Metrics) IncShopLookup(outcome string) {
	if m == nil {
		return
	}
	m.ShopLookupsTotal.WithLabelValues(outcome).Inc()
}

// IncShortCircuit records a seller whose remaining unknown books were skipped.
func (m *Metrics) IncShortCircuit() {
	if m == nil {
		return
	}
	m.SamplingShortCircuits.Inc()
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}
