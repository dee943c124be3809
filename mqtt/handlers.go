// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

// RegisterConnectionAttemptEventHandler registers a handler called before
// every attempt to connect. Returns a function to remove the handler.
func (c *SessionClient) RegisterConnectionAttemptEventHandler(
	handler ConnectionAttemptEventHandler,
) func() {
	return c.connectionAttemptHandlers.Add(handler)
}

// RegisterConnectEventHandler registers a handler called every time the
// server accepts a connection. Returns a function to remove the handler.
func (c *SessionClient) RegisterConnectEventHandler(
	handler ConnectEventHandler,
) func() {
	return c.connectHandlers.Add(handler)
}

// RegisterDisconnectEventHandler registers a handler called every time a
// connection attempt fails or an established connection is lost, and once
// more when the client is stopped. Returns a function to remove the handler.
func (c *SessionClient) RegisterDisconnectEventHandler(
	handler DisconnectEventHandler,
) func() {
	return c.disconnectHandlers.Add(handler)
}

// RegisterFatalErrorHandler registers a handler called once if the client
// gives up because of a fatal error. Returns a function to remove the
// handler.
func (c *SessionClient) RegisterFatalErrorHandler(
	handler FatalErrorHandler,
) func() {
	return c.fatalErrorHandlers.Add(handler)
}

func (c *SessionClient) notifyConnectionAttempt(attempt uint64) {
	event := &ConnectionAttemptEvent{Attempt: attempt}
	for handler := range c.connectionAttemptHandlers.All() {
		handler(event)
	}
}

func (c *SessionClient) notifyConnect(event *ConnectEvent) {
	for handler := range c.connectHandlers.All() {
		handler(event)
	}
}

func (c *SessionClient) notifyDisconnect(event *DisconnectEvent) {
	for handler := range c.disconnectHandlers.All() {
		handler(event)
	}
}
