package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds OpenTelemetry metric instruments for builds. They are
// exported through the meter provider InitOTel installs.
type OTelMetrics struct {
	buildsTotal      metric.Int64Counter
	buildDuration    metric.Float64Histogram
	diagnosticsTotal metric.Int64Counter
	artifactBytes    metric.Int64Histogram
}

// NewOTelMetrics creates the instruments from provider, or from the global
// provider when it is nil.
func NewOTelMetrics(provider metric.MeterProvider) (*OTelMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(TracerName)

	m := &OTelMetrics{}
	var err error

	m.buildsTotal, err = meter.Int64Counter(
		"weaver.builds",
		metric.WithDescription("Total number of target builds"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create builds counter: %w", err)
	}

	m.buildDuration, err = meter.Float64Histogram(
		"weaver.build.duration",
		metric.WithDescription("Target build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create build duration histogram: %w", err)
	}

	m.diagnosticsTotal, err = meter.Int64Counter(
		"weaver.diagnostics",
		metric.WithDescription("Diagnostics reported by target builds"),
		metric.WithUnit("{diagnostic}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create diagnostics counter: %w", err)
	}

	m.artifactBytes, err = meter.Int64Histogram(
		"weaver.artifact.size",
		metric.WithDescription("Size of stored artifacts"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact size histogram: %w", err)
	}

	return m, nil
}

// RecordBuild records one target build
func (m *OTelMetrics) RecordBuild(ctx context.Context, target string, ok bool, duration time.Duration, diagnostics int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("weaver.target", target),
		attribute.String("status", status(ok)),
	)

	m.buildsTotal.Add(ctx, 1, attrs)
	m.buildDuration.Record(ctx, duration.Seconds(), attrs)
	if diagnostics > 0 {
		m.diagnosticsTotal.Add(ctx, int64(diagnostics), attrs)
	}
}

// RecordArtifact records the size of a stored artifact
func (m *OTelMetrics) RecordArtifact(ctx context.Context, backend string, size int64) {
	if m == nil {
		return
	}
	m.artifactBytes.Record(ctx, size, metric.WithAttributes(attribute.String("backend", backend)))
}
