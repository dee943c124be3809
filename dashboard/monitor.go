// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/inteli/rssi-dashboard/internal/log"
	"github.com/inteli/rssi-dashboard/mqtt"
	"github.com/inteli/rssi-dashboard/protocol"
	protocolErrors "github.com/inteli/rssi-dashboard/protocol/errors"
	"github.com/inteli/rssi-dashboard/rssi"
)

type (
	// Monitor owns the session state. All changes go through a single event
	// loop, and every change is published as a new Snapshot.
	Monitor struct {
		events  chan rssi.Event
		done    chan struct{}
		running atomic.Bool

		// Owned by the loop.
		state rssi.State
		seq   uint64

		current atomic.Pointer[Snapshot]

		mu          sync.Mutex
		subscribers map[chan *Snapshot]struct{}

		broker  string
		topic   string
		metrics *Metrics
		log     log.Logger
	}

	// SessionEvents is the subset of the session client the monitor needs to
	// follow the connection lifecycle.
	SessionEvents interface {
		RegisterConnectionAttemptEventHandler(mqtt.ConnectionAttemptEventHandler) func()
		RegisterConnectEventHandler(mqtt.ConnectEventHandler) func()
		RegisterDisconnectEventHandler(mqtt.DisconnectEventHandler) func()
		RegisterFatalErrorHandler(mqtt.FatalErrorHandler) func()
	}
)

// ErrMonitorRunning is returned by Run if the loop is already running.
var ErrMonitorRunning = errors.New("monitor is already running")

// NewMonitor creates a monitor with an empty session.
func NewMonitor(opt ...MonitorOption) *Monitor {
	opts := MonitorOptions{EventBuffer: DefaultEventBuffer}
	opts.Apply(opt)
	if opts.EventBuffer < 0 {
		opts.EventBuffer = 0
	}

	m := &Monitor{
		events:      make(chan rssi.Event, opts.EventBuffer),
		done:        make(chan struct{}),
		state:       rssi.NewState(opts.Capacity),
		subscribers: map[chan *Snapshot]struct{}{},
		broker:      opts.Broker,
		topic:       opts.Topic,
		metrics:     opts.Metrics,
		log:         log.Wrap(opts.Logger),
	}
	m.current.Store(newSnapshot(0, m.state, m.broker, m.topic))
	return m
}

// Run processes events until ctx is cancelled. Events dispatched after Run
// returns are dropped.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrMonitorRunning
	}
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			m.log.Debug(ctx, "monitor stopped")
			return nil
		case e := <-m.events:
			m.apply(ctx, e)
		}
	}
}

// Dispatch queues an event for the loop. It blocks while the queue is full,
// until ctx is done or the loop has stopped.
func (m *Monitor) Dispatch(ctx context.Context, e rssi.Event) {
	select {
	case m.events <- e:
	case <-ctx.Done():
	case <-m.done:
	}
}

// Snapshot returns the latest published snapshot.
func (m *Monitor) Snapshot() *Snapshot {
	return m.current.Load()
}

// Subscribe returns a channel that receives the current snapshot, then every
// newer one. A subscriber that falls behind only sees the most recent
// snapshot. The returned function unsubscribes.
func (m *Monitor) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	ch <- m.current.Load()
	m.mu.Unlock()

	return ch, sync.OnceFunc(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, ch)
	})
}

func (m *Monitor) apply(ctx context.Context, e rssi.Event) {
	prev := m.state
	m.state = rssi.Reduce(prev, e)
	m.metrics.observe(prev, m.state)

	if c, ok := e.(rssi.ConnectionChanged); ok && c.State != prev.Connection {
		attrs := []slog.Attr{
			slog.String("from", prev.Connection.String()),
			slog.String("to", c.State.String()),
		}
		if c.Err != nil {
			attrs = append(attrs, slog.String("error", c.Err.Error()))
		}
		m.log.Info(ctx, "connection state changed", attrs...)
	}

	m.seq++
	m.publish(newSnapshot(m.seq, m.state, m.broker, m.topic))
}

func (m *Monitor) publish(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current.Store(snap)
	for ch := range m.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Replace the stale snapshot the subscriber has not read yet.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Follow translates the session client's lifecycle events into connection
// state changes. The returned function stops following.
func (m *Monitor) Follow(session SessionEvents) func() {
	ctx := context.Background()
	removers := []func(){
		session.RegisterConnectionAttemptEventHandler(
			func(e *mqtt.ConnectionAttemptEvent) {
				state := rssi.Reconnecting
				if e.Attempt <= 1 {
					state = rssi.Connecting
				}
				m.Dispatch(ctx, rssi.ConnectionChanged{State: state})
			},
		),
		session.RegisterConnectEventHandler(func(*mqtt.ConnectEvent) {
			m.Dispatch(ctx, rssi.ConnectionChanged{State: rssi.Connected})
		}),
		session.RegisterDisconnectEventHandler(func(e *mqtt.DisconnectEvent) {
			m.Dispatch(ctx, disconnected(e))
		}),
		session.RegisterFatalErrorHandler(func(err error) {
			m.Dispatch(ctx, rssi.ConnectionChanged{State: rssi.Error, Err: err})
		}),
	}
	return sync.OnceFunc(func() {
		for _, remove := range removers {
			remove()
		}
	})
}

// A DISCONNECT from the broker or a local stop is an orderly disconnect;
// anything else is an error.
func disconnected(e *mqtt.DisconnectEvent) rssi.ConnectionChanged {
	if e.ReasonCode != nil || e.Error == nil {
		return rssi.ConnectionChanged{State: rssi.Disconnected, Err: e.Error}
	}
	return rssi.ConnectionChanged{State: rssi.Error, Err: e.Error}
}

// HandleTelemetry is a telemetry handler that feeds accepted readings to the
// loop. Rejected payloads are only logged at debug level and counted.
func (m *Monitor) HandleTelemetry(
	ctx context.Context,
	msg *protocol.TelemetryMessage[rssi.Reading],
) error {
	switch r := msg.Payload.(type) {
	case rssi.ValidSample:
		m.Dispatch(ctx, rssi.SampleReceived{Value: r.Value, At: msg.Timestamp})
	case rssi.Invalid:
		m.log.Debug(ctx, "payload discarded",
			slog.String("topic", msg.Topic),
			slog.String("reason", string(r.Reason)),
		)
		m.metrics.discard(string(r.Reason))
	}
	return nil
}

// HandleTelemetryError counts messages the receiver dropped before they
// reached HandleTelemetry.
func (m *Monitor) HandleTelemetryError(_ context.Context, err error) {
	reason := "rejected"
	var e *protocolErrors.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case protocolErrors.HeaderInvalid:
			reason = "content_type"
		case protocolErrors.PayloadInvalid:
			reason = string(rssi.ReasonMalformed)
		}
	}
	m.metrics.discard(reason)
}
