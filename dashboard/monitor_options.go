// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dashboard

import (
	"log/slog"

	"github.com/inteli/rssi-dashboard/internal/options"
)

type (
	// MonitorOption represents a single monitor option.
	MonitorOption interface{ monitor(*MonitorOptions) }

	// MonitorOptions are the resolved monitor options.
	MonitorOptions struct {
		// Capacity of the sample window.
		Capacity int
		// Broker and Topic are shown to viewers.
		Broker string
		Topic  string
		// EventBuffer is the number of events queued ahead of the loop.
		EventBuffer int
		Metrics     *Metrics
		Logger      *slog.Logger
	}

	// WithCapacity sets the number of samples kept in the window.
	WithCapacity int

	// WithBroker sets the broker address shown to viewers.
	WithBroker string

	// WithTopic sets the topic shown to viewers.
	WithTopic string

	// WithEventBuffer sets the number of events queued ahead of the loop.
	WithEventBuffer int

	withMetrics struct{ *Metrics }
	withLogger  struct{ *slog.Logger }
)

// DefaultEventBuffer is the number of events queued ahead of the loop when no
// other size is configured.
const DefaultEventBuffer = 64

// WithMetrics records the session on the given metrics.
func WithMetrics(m *Metrics) interface {
	MonitorOption
	ServerOption
} {
	return withMetrics{m}
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(l *slog.Logger) interface {
	MonitorOption
	ServerOption
} {
	return withLogger{l}
}

func (o WithCapacity) monitor(opt *MonitorOptions) {
	opt.Capacity = int(o)
}

func (o WithBroker) monitor(opt *MonitorOptions) {
	opt.Broker = string(o)
}

func (o WithTopic) monitor(opt *MonitorOptions) {
	opt.Topic = string(o)
}

func (o WithEventBuffer) monitor(opt *MonitorOptions) {
	opt.EventBuffer = int(o)
}

func (o withMetrics) monitor(opt *MonitorOptions) {
	opt.Metrics = o.Metrics
}

func (o withMetrics) server(opt *ServerOptions) {
	opt.Metrics = o.Metrics
}

func (o withLogger) monitor(opt *MonitorOptions) {
	opt.Logger = o.Logger
}

func (o withLogger) server(opt *ServerOptions) {
	opt.Logger = o.Logger
}

// Apply resolves the provided list of options.
func (o *MonitorOptions) Apply(
	opts []MonitorOption,
	rest ...MonitorOption,
) {
	for opt := range options.Apply[MonitorOption](opts, rest...) {
		opt.monitor(o)
	}
}

func (o *MonitorOptions) monitor(opt *MonitorOptions) {
	if o != nil {
		*opt = *o
	}
}
