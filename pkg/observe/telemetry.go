package observe

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// SlogTelemetry writes every event as a debug log line.
type SlogTelemetry struct {
	Logger *slog.Logger
}

var _ dashboard.Telemetry = SlogTelemetry{}

// Record logs the event and its payload.
func (t SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if t.Logger == nil {
		return
	}
	args := make([]any, 0, len(payload)*2+2)
	args = append(args, "event", event)
	for k, v := range payload {
		args = append(args, k, v)
	}
	t.Logger.DebugContext(ctx, "dashboard telemetry", args...)
}

// PrometheusTelemetry counts events by name.
type PrometheusTelemetry struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

var _ dashboard.Telemetry = (*PrometheusTelemetry)(nil)

// NewPrometheusTelemetry registers the dashboard counters on a private
// registry together with the Go and process collectors.
func NewPrometheusTelemetry(namespace string) *PrometheusTelemetry {
	if namespace == "" {
		namespace = "dashboard"
	}
	registry := prometheus.NewRegistry()
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Dashboard events by name.",
	}, []string{"event"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "failures_total",
		Help:      "Dashboard events carrying an error, by name.",
	}, []string{"event"})
	registry.MustRegister(
		events,
		failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusTelemetry{registry: registry, events: events, failures: failures}
}

// Record increments the event counter, and the failure counter when the
// payload has an "error" entry.
func (t *PrometheusTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.events.WithLabelValues(event).Inc()
	if _, failed := payload["error"]; failed {
		t.failures.WithLabelValues(event).Inc()
	}
}

// Registry exposes the underlying registry for extra collectors.
func (t *PrometheusTelemetry) Registry() *prometheus.Registry {
	return t.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (t *PrometheusTelemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// MultiTelemetry fans an event out to several sinks.
type MultiTelemetry []dashboard.Telemetry

// Record forwards to every non-nil sink.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range m {
		if sink != nil {
			sink.Record(ctx, event, payload)
		}
	}
}
