package observability

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewServer returns an HTTP server exposing /metrics for registry and the
// health probes of checker. Either may be nil. Requests are traced.
func NewServer(addr string, registry *prometheus.Registry, checker *HealthChecker) *http.Server {
	router := mux.NewRouter()
	if registry != nil {
		RegisterMetricsEndpoint(router, registry)
	}
	if checker != nil {
		RegisterHealthRoutes(router, checker)
	}

	return &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "weaver.http"),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
