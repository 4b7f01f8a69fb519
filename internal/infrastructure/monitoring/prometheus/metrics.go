package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric emitted by the nmrhose platform.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// HOSE generation (C3)
	HOSEGenerateDuration HistogramVec
	HOSEGenerateTotal    CounterVec

	// Shift store (C4)
	StoreChunkLoadDuration HistogramVec
	StoreCacheHitsTotal    CounterVec
	StoreCacheMissesTotal  CounterVec
	StoreChunksLoaded      GaugeVec

	// Forward lookup (C5)
	LookupRequestsTotal     CounterVec
	LookupAtomsMatchedTotal CounterVec
	LookupDuration          HistogramVec

	// Reverse estimator (C6)
	EstimateRequestsTotal   CounterVec
	EstimateCandidatesTotal CounterVec
	EstimateDuration        HistogramVec

	// System health
	ErrorsTotal CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultHOSEDurationBuckets  = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultStoreDurationBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5}
)

// NewAppMetrics registers every metric and returns the populated AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// HOSE generation
	m.HOSEGenerateDuration = collector.RegisterHistogram("hose_generate_duration_seconds", "HOSE code generation duration per atom", DefaultHOSEDurationBuckets, "sphere_limit")
	m.HOSEGenerateTotal = collector.RegisterCounter("hose_generate_total", "HOSE codes generated", "status")

	// Shift store
	m.StoreChunkLoadDuration = collector.RegisterHistogram("store_chunk_load_duration_seconds", "Chunk load duration by backend", DefaultStoreDurationBuckets, "backend")
	m.StoreCacheHitsTotal = collector.RegisterCounter("store_cache_hits_total", "Shift-store cache hits", "tier")
	m.StoreCacheMissesTotal = collector.RegisterCounter("store_cache_misses_total", "Shift-store cache misses", "tier")
	m.StoreChunksLoaded = collector.RegisterGauge("store_chunks_loaded", "Chunks currently resident in the L1 cache", "backend")

	// Forward lookup
	m.LookupRequestsTotal = collector.RegisterCounter("lookup_requests_total", "Forward lookup requests", "nucleus", "outcome")
	m.LookupAtomsMatchedTotal = collector.RegisterCounter("lookup_atoms_matched_total", "Atoms resolved by forward lookup", "nucleus", "fallback_round")
	m.LookupDuration = collector.RegisterHistogram("lookup_duration_seconds", "Forward lookup duration", DefaultStoreDurationBuckets, "nucleus")

	// Reverse estimator
	m.EstimateRequestsTotal = collector.RegisterCounter("estimate_requests_total", "Reverse estimator requests", "nucleus")
	m.EstimateCandidatesTotal = collector.RegisterCounter("estimate_candidates_total", "Candidate molecules scored by the reverse estimator", "nucleus")
	m.EstimateDuration = collector.RegisterHistogram("estimate_duration_seconds", "Reverse estimator duration", DefaultHTTPDurationBuckets, "nucleus")

	// System health
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// RegisterAppMetrics is an alias for NewAppMetrics.
func RegisterAppMetrics(collector MetricsCollector) *AppMetrics {
	return NewAppMetrics(collector)
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordHOSEGenerate(metrics *AppMetrics, sphereLimit int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.HOSEGenerateTotal.WithLabelValues(status).Inc()
	metrics.HOSEGenerateDuration.WithLabelValues(fmt.Sprintf("%d", sphereLimit)).Observe(duration.Seconds())
}

func RecordStoreChunkLoad(metrics *AppMetrics, backend string, duration time.Duration) {
	metrics.StoreChunkLoadDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

func RecordStoreCacheAccess(metrics *AppMetrics, tier string, hit bool) {
	if hit {
		metrics.StoreCacheHitsTotal.WithLabelValues(tier).Inc()
	} else {
		metrics.StoreCacheMissesTotal.WithLabelValues(tier).Inc()
	}
}

func RecordLookup(metrics *AppMetrics, nucleus, outcome string, fallbackRound int, duration time.Duration) {
	metrics.LookupRequestsTotal.WithLabelValues(nucleus, outcome).Inc()
	metrics.LookupAtomsMatchedTotal.WithLabelValues(nucleus, fmt.Sprintf("%d", fallbackRound)).Inc()
	metrics.LookupDuration.WithLabelValues(nucleus).Observe(duration.Seconds())
}

func RecordEstimate(metrics *AppMetrics, nucleus string, candidateCount int, duration time.Duration) {
	metrics.EstimateRequestsTotal.WithLabelValues(nucleus).Inc()
	metrics.EstimateCandidatesTotal.WithLabelValues(nucleus).Add(float64(candidateCount))
	metrics.EstimateDuration.WithLabelValues(nucleus).Observe(duration.Seconds())
}

func RecordError(metrics *AppMetrics, component, errorType string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
