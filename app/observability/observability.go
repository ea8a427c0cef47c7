package observability

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the logger, metrics and tracer handed to each module.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *PrometheusMetrics
	Tracer   trace.Tracer
}

// New builds the process observability stack. Spans go to the global otel
// tracer provider, which is a no-op unless an exporter installs one.
func New(cfg LogConfig, w io.Writer) (*Observability, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := NewPrometheusMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Observability{
		Logger:   NewLogger(cfg, w),
		Registry: registry,
		Metrics:  metrics,
		Tracer:   otel.Tracer("github.com/Black-And-White-Club/cube-rooms"),
	}, nil
}
