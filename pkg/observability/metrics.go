package observability

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platinummonkey/weaver/pkg/diag"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Processor metrics
	InitializationsTotal *prometheus.CounterVec
	EditCyclesTotal      *prometheus.CounterVec
	PhaseDuration        *prometheus.HistogramVec
	PhaseErrorsTotal     *prometheus.CounterVec
	EditorsRegistered    prometheus.Gauge

	// Diagnostics
	DiagnosticsTotal *prometheus.CounterVec

	// Compile cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Artifact metrics
	ArtifactsStoredTotal *prometheus.CounterVec
	ArtifactBytes        prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		InitializationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_initializations_total",
				Help: "Total number of processor initializations",
			},
			[]string{"status"},
		),
		EditCyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_edit_cycles_total",
				Help: "Total number of edit cycles",
			},
			[]string{"status"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weaver_phase_duration_seconds",
				Help:    "Duration of processor lifecycle phases in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"phase"},
		),
		PhaseErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_phase_errors_total",
				Help: "Total number of failed processor phases",
			},
			[]string{"phase"},
		),
		EditorsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "weaver_editors_registered",
				Help: "Number of editors registered by the last initialization",
			},
		),
		DiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_diagnostics_total",
				Help: "Total number of diagnostics reported",
			},
			[]string{"id", "severity"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "weaver_compile_cache_hits_total",
				Help: "Total number of compile cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "weaver_compile_cache_misses_total",
				Help: "Total number of compile cache misses",
			},
		),
		ArtifactsStoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_artifacts_stored_total",
				Help: "Total number of artifacts stored",
			},
			[]string{"backend", "status"},
		),
		ArtifactBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "weaver_artifact_size_bytes",
				Help:    "Size of stored artifacts in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.InitializationsTotal,
		m.EditCyclesTotal,
		m.PhaseDuration,
		m.PhaseErrorsTotal,
		m.EditorsRegistered,
		m.DiagnosticsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ArtifactsStoredTotal,
		m.ArtifactBytes,
	)

	return m
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordInitialization records an initialization outcome.
func (m *Metrics) RecordInitialization(ok bool, editors int) {
	if m == nil {
		return
	}
	m.InitializationsTotal.WithLabelValues(status(ok)).Inc()
	m.EditorsRegistered.Set(float64(editors))
}

// RecordEditCycle records the outcome of one edit cycle.
func (m *Metrics) RecordEditCycle(ok bool) {
	if m == nil {
		return
	}
	m.EditCyclesTotal.WithLabelValues(status(ok)).Inc()
}

// ObservePhase records a phase duration and whether it failed.
func (m *Metrics) ObservePhase(phase string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	if err != nil {
		m.PhaseErrorsTotal.WithLabelValues(phase).Inc()
	}
}

// RecordDiagnostic counts a reported diagnostic.
func (m *Metrics) RecordDiagnostic(d diag.Diagnostic) {
	if m == nil {
		return
	}
	m.DiagnosticsTotal.WithLabelValues(d.ID(), d.Severity.String()).Inc()
}

// RecordCache counts a compile cache lookup.
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}

// RecordArtifact counts a stored artifact.
func (m *Metrics) RecordArtifact(backend string, size int, err error) {
	if m == nil {
		return
	}
	m.ArtifactsStoredTotal.WithLabelValues(backend, status(err == nil)).Inc()
	if err == nil {
		m.ArtifactBytes.Observe(float64(size))
	}
}

// MetricsHandler serves registry in the Prometheus exposition format.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(router *mux.Router, registry *prometheus.Registry) {
	router.Handle("/metrics", MetricsHandler(registry)).Methods(http.MethodGet)
}
