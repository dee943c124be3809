// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

import "fmt"

// ConnectionState is the dashboard's view of the broker session.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
	Error
)

var statusText = map[ConnectionState]string{
	Disconnected: "Disconnected",
	Connecting:   "Connecting...",
	Connected:    "Connected",
	Reconnecting: "Reconnecting...",
	Error:        "Connection error",
}

var names = map[ConnectionState]string{
	Disconnected: "disconnected",
	Connecting:   "connecting",
	Connected:    "connected",
	Reconnecting: "reconnecting",
	Error:        "error",
}

// String returns a stable lowercase identifier, used for logs and metrics.
func (s ConnectionState) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("ConnectionState(%d)", int(s))
}

// StatusText returns the human-readable status shown to viewers.
func (s ConnectionState) StatusText() string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return s.String()
}

// IsConnected reports whether samples can currently arrive.
func (s ConnectionState) IsConnected() bool {
	return s == Connected
}
