// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/eclipse/paho.golang/paho"
	"github.com/inteli/rssi-dashboard/internal/log"
	"github.com/inteli/rssi-dashboard/mqtt/internal"
	"github.com/inteli/rssi-dashboard/mqtt/retry"
)

type (
	// SessionClient implements an MQTT v5 client that keeps one connection
	// to the server alive: it reconnects on a fixed period, restores its
	// subscriptions after every reconnection and reports each step of the
	// connection lifecycle to registered handlers.
	SessionClient struct {
		// Used to ensure Start() and Stop() are each called only once.
		sessionStarted atomic.Bool
		sessionStopped atomic.Bool

		// Closed on Stop() or after a fatal error; cancels background work
		// and inflight operations.
		shutdown *internal.Background

		// Closed once the connection manager goroutine has exited.
		done chan struct{}

		conn *internal.ConnectionTracker[*paho.Client]

		subscriptions *internal.HandlerList[*subscription]

		connectionAttemptHandlers *internal.HandlerList[ConnectionAttemptEventHandler]
		connectHandlers           *internal.HandlerList[ConnectEventHandler]
		disconnectHandlers        *internal.HandlerList[DisconnectEventHandler]
		fatalErrorHandlers        *internal.HandlerList[FatalErrorHandler]

		connectionProvider ConnectionProvider
		options            SessionClientOptions

		log internal.Logger
	}
)

// NewSessionClient constructs a new session client with user options.
func NewSessionClient(
	connectionProvider ConnectionProvider,
	opts ...SessionClientOption,
) *SessionClient {
	client := &SessionClient{
		shutdown: internal.NewBackground(&ClientStateError{State: ShutDown}),
		done:     make(chan struct{}),
		conn:     internal.NewConnectionTracker[*paho.Client](),

		subscriptions:             internal.NewHandlerList[*subscription](),
		connectionAttemptHandlers: internal.NewHandlerList[ConnectionAttemptEventHandler](),
		connectHandlers:           internal.NewHandlerList[ConnectEventHandler](),
		disconnectHandlers:        internal.NewHandlerList[DisconnectEventHandler](),
		fatalErrorHandlers:        internal.NewHandlerList[FatalErrorHandler](),

		connectionProvider: connectionProvider,
		options:            SessionClientOptions{CleanStart: true},
	}

	client.options.Apply(opts)

	if client.options.ClientID == "" {
		client.options.ClientID = internal.RandomClientID(DefaultClientIDPrefix)
	}

	if client.options.KeepAlive == 0 {
		client.options.KeepAlive = DefaultKeepAlive
	}

	if client.options.ConnectionTimeout <= 0 {
		client.options.ConnectionTimeout = DefaultConnectionTimeout
	}

	if client.options.ReconnectPeriod <= 0 {
		client.options.ReconnectPeriod = DefaultReconnectPeriod
	}

	if client.options.ConnectionRetry == nil {
		client.options.ConnectionRetry = retry.Fixed(
			client.options.ReconnectPeriod,
			client.options.Logger,
		)
	}

	client.log.Logger = log.Wrap(client.options.Logger)

	return client
}

// ID returns the MQTT client ID for this session client.
func (c *SessionClient) ID() string {
	return c.options.ClientID
}

// Start launches the background connection manager. It returns immediately;
// connection progress is reported through the registered event handlers.
func (c *SessionClient) Start() error {
	if !c.sessionStarted.CompareAndSwap(false, true) {
		return &ClientStateError{State: Started}
	}

	ctx, cancel := c.shutdown.With(context.Background())
	go func() {
		defer close(c.done)
		defer cancel()

		if err := c.manageConnection(ctx); err != nil {
			c.log.Err(ctx, err, slog.String("client_id", c.ID()))
			c.shutdown.Close()
			for handler := range c.fatalErrorHandlers.All() {
				handler(err)
			}
			return
		}

		// Stopped by the user; report the final state exactly once.
		c.notifyDisconnect(&DisconnectEvent{})
	}()

	return nil
}

// Stop disconnects gracefully from the server and waits for the connection
// manager to exit. Operations in flight fail with a ClientStateError.
func (c *SessionClient) Stop() error {
	if !c.sessionStarted.Load() {
		return &ClientStateError{State: NotStarted}
	}
	if !c.sessionStopped.CompareAndSwap(false, true) {
		return &ClientStateError{State: ShutDown}
	}

	c.shutdown.Close()
	<-c.done
	return nil
}

// Done is closed once the client has fully shut down, either through Stop or
// after a fatal error.
func (c *SessionClient) Done() <-chan struct{} {
	return c.done
}

// Connected reports whether the client currently holds a live connection.
func (c *SessionClient) Connected() bool {
	return c.conn.Current().Client != nil
}

func (c *SessionClient) ensureStarted() error {
	if !c.sessionStarted.Load() {
		return &ClientStateError{State: NotStarted}
	}
	if c.shutdown.Err() != nil {
		return &ClientStateError{State: ShutDown}
	}
	return nil
}
