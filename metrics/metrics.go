// Package metrics exposes Prometheus metrics for the registry server.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OperationsTotal counts registry operations by operation name and
	// outcome ("ok" or the error kind).
	OperationsTotal *prometheus.CounterVec

	// EventsEmitted counts notifications emitted by the registry, by kind.
	EventsEmitted *prometheus.CounterVec
)

// MetricsServer serves the Prometheus scrape endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service namespace listening
// on addr. Metric collectors are registered once per process.
func New(namespace, addr string) (*MetricsServer, error) {
	if OperationsTotal == nil {
		OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Registry operations by name and outcome.",
		}, []string{"operation", "outcome"})

		EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Registry notifications emitted, by kind.",
		}, []string{"kind"})
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the scrape endpoint.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

// RecordEvent increments the emitted-notification counter.
func RecordEvent(kind string) {
	if EventsEmitted == nil {
		return
	}
	EventsEmitted.WithLabelValues(kind).Inc()
}

// RecordOperation increments the operation counter. err may be nil.
func RecordOperation(operation string, err error) {
	if OperationsTotal == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}
