// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dashboard

import (
	"net/http"

	"github.com/inteli/rssi-dashboard/rssi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rssi_dashboard"

var connectionStates = []rssi.ConnectionState{
	rssi.Disconnected,
	rssi.Connecting,
	rssi.Connected,
	rssi.Reconnecting,
	rssi.Error,
}

// Metrics exposes the session on its own Prometheus registry. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	accepted    prometheus.Counter
	discarded   *prometheus.CounterVec
	latest      prometheus.Gauge
	maximum     prometheus.Gauge
	minimum     prometheus.Gauge
	points      prometheus.Gauge
	state       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	viewers     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, along with the Go
// runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_accepted_total",
			Help:      "Total readings accepted into the window",
		}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_discarded_total",
			Help:      "Total payloads discarded, by reason",
		}, []string{"reason"}),
		latest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rssi_latest_dbm",
			Help:      "Most recent accepted reading",
		}),
		maximum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rssi_maximum_dbm",
			Help:      "Largest reading of the session",
		}),
		minimum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rssi_minimum_dbm",
			Help:      "Smallest reading of the session",
		}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_points",
			Help:      "Number of samples in the chart window",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "Current connection state (1 for the active state)",
		}, []string{"state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_transitions_total",
			Help:      "Total connection state changes, by new state",
		}, []string{"state"}),
		viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_viewers",
			Help:      "Number of connected live viewers",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.accepted,
		m.discarded,
		m.latest,
		m.maximum,
		m.minimum,
		m.points,
		m.state,
		m.transitions,
		m.viewers,
	)
	m.setState(rssi.Disconnected)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Update the gauges after the session moved from prev to next.
func (m *Metrics) observe(prev, next rssi.State) {
	if m == nil {
		return
	}

	if next.Accepted > prev.Accepted {
		m.accepted.Add(float64(next.Accepted - prev.Accepted))
	}
	if v, ok := next.Extremes.Latest(); ok {
		m.latest.Set(v)
	}
	if v, ok := next.Extremes.Maximum(); ok {
		m.maximum.Set(v)
	}
	if v, ok := next.Extremes.Minimum(); ok {
		m.minimum.Set(v)
	}
	m.points.Set(float64(next.Window.Len()))

	if next.Connection != prev.Connection {
		m.transitions.WithLabelValues(next.Connection.String()).Inc()
		m.setState(next.Connection)
	}
}

func (m *Metrics) setState(current rssi.ConnectionState) {
	for _, s := range connectionStates {
		v := 0.0
		if s == current {
			v = 1
		}
		m.state.WithLabelValues(s.String()).Set(v)
	}
}

func (m *Metrics) discard(reason string) {
	if m == nil {
		return
	}
	m.discarded.WithLabelValues(reason).Inc()
}

func (m *Metrics) viewerJoined() {
	if m != nil {
		m.viewers.Inc()
	}
}

func (m *Metrics) viewerLeft() {
	if m != nil {
		m.viewers.Dec()
	}
}
