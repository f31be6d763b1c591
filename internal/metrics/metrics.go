// Package metrics exposes dispatch, connection and event log metrics to prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"contract-admin/internal/chain"
	"contract-admin/internal/connection"
	"contract-admin/internal/dispatch"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contract_admin"

// Metrics holds the collectors of one process.
type Metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	connection  *prometheus.GaugeVec
	events      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Finished invocations by function, kind and outcome.",
		}, []string{"function", "kind", "outcome", "category"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Time from submission to terminal result.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"function", "kind"}),
		connection: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_status",
			Help:      "1 for the current wallet connection status, 0 otherwise.",
		}, []string{"status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_events_total",
			Help:      "Contract events recorded by name.",
		}, []string{"event"}),
	}
	m.registry.MustRegister(
		m.invocations,
		m.duration,
		m.connection,
		m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Finished implements dispatch.Hook.
func (m *Metrics) Finished(_ context.Context, inv *dispatch.Invocation, res dispatch.Result) {
	if !res.Terminal() {
		return
	}
	kind := string(inv.Function.Kind)
	m.invocations.WithLabelValues(inv.Function.Name, kind, string(res.Outcome), string(res.Category)).Inc()
	if !inv.StartedAt.IsZero() {
		m.duration.WithLabelValues(inv.Function.Name, kind).Observe(time.Since(inv.StartedAt).Seconds())
	}
}

var statuses = []connection.Status{
	connection.StatusDisconnected,
	connection.StatusConnecting,
	connection.StatusConnected,
	connection.StatusWrongNetwork,
	connection.StatusNoWallet,
	connection.StatusFailed,
}

// ObserveConnection sets the status gauge from a tracker state.
func (m *Metrics) ObserveConnection(s connection.State) {
	for _, status := range statuses {
		v := 0.0
		if status == s.Status {
			v = 1
		}
		m.connection.WithLabelValues(string(status)).Set(v)
	}
}

// ObserveEvent counts a newly recorded contract event.
func (m *Metrics) ObserveEvent(ev chain.Event) {
	m.events.WithLabelValues(ev.Name).Inc()
}
