// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Structured Logging
//
// Create logger:
//
//	logger, err := observability.NewLogger("info", "text", os.Stderr)
//	logger.WithField("editor", name).Debug("initialized")
//
// Library code that receives a nil logger should use Discard.
//
// # Prometheus Metrics
//
// Initialize metrics against a registry and hand them to the processor:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.ObservePhase("Emit", 12*time.Millisecond, nil)
//
// A nil *Metrics is valid and records nothing.
//
// # OpenTelemetry
//
// InitOTel installs global tracer and meter providers exporting over OTLP/gRPC.
// The processor creates one span per lifecycle phase:
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Panic Recovery
//
// RecoverPanic logs and swallows panics in long-running goroutines such as the
// watch loop.
package observability
