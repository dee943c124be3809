// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"fmt"
	"log/slog"
)

// ClientState indicates the current state of the session client.
type ClientState byte

const (
	// The session client has not yet been started.
	NotStarted ClientState = iota

	// The session client has been started and has not yet been stopped by the
	// user or terminated due to a fatal error.
	Started

	// The session client has been stopped by the user or terminated due to a
	// fatal error.
	ShutDown
)

// ClientStateError is returned when the operation cannot proceed due to the
// state of the session client.
type ClientStateError struct {
	State ClientState
}

func (e *ClientStateError) Error() string {
	switch e.State {
	case NotStarted:
		return "the session client has not yet been started"
	case Started:
		return "the session client has already been started"
	case ShutDown:
		return "the session client has been shut down"
	default:
		return fmt.Sprintf("unknown session client state %d", e.State)
	}
}

// DisconnectError indicates that the server sent a DISCONNECT packet with a
// reason code that is not fatal. The client reconnects after it.
type DisconnectError struct {
	ReasonCode byte
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf(
		"received DISCONNECT packet with reason code %#x",
		e.ReasonCode,
	)
}

func (e *DisconnectError) Attrs() []slog.Attr {
	return []slog.Attr{slog.Int("reason_code", int(e.ReasonCode))}
}

// FatalDisconnectError indicates that the session client has terminated due
// to receiving a DISCONNECT packet with a fatal reason code.
type FatalDisconnectError struct {
	ReasonCode byte
}

func (e *FatalDisconnectError) Error() string {
	return fmt.Sprintf(
		"received DISCONNECT packet with fatal reason code %#x",
		e.ReasonCode,
	)
}

func (e *FatalDisconnectError) Attrs() []slog.Attr {
	return []slog.Attr{slog.Int("reason_code", int(e.ReasonCode))}
}

// ConnectionError indicates a failure to open, or a loss of, the network
// connection to the MQTT server. It may wrap an underlying error using Go
// standard error wrapping.
type ConnectionError struct {
	wrapped error
	message string
}

func (e *ConnectionError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *ConnectionError) Unwrap() error {
	return e.wrapped
}

// ConnackError indicates that the server rejected the connection with a
// reason code that is not fatal.
type ConnackError struct {
	ReasonCode byte
}

func (e *ConnackError) Error() string {
	return fmt.Sprintf(
		"received CONNACK packet with error reason code %#x",
		e.ReasonCode,
	)
}

func (e *ConnackError) Attrs() []slog.Attr {
	return []slog.Attr{slog.Int("reason_code", int(e.ReasonCode))}
}

// FatalConnackError indicates that the session client has terminated due to
// receiving a CONNACK with a fatal reason code.
type FatalConnackError struct {
	ReasonCode byte
}

func (e *FatalConnackError) Error() string {
	return fmt.Sprintf(
		"received CONNACK packet with fatal reason code %#x",
		e.ReasonCode,
	)
}

func (e *FatalConnackError) Attrs() []slog.Attr {
	return []slog.Attr{slog.Int("reason_code", int(e.ReasonCode))}
}

// InvalidArgumentError indicates that the user has provided an invalid value
// for an option. It may wrap an underlying error using Go standard error
// wrapping.
type InvalidArgumentError struct {
	wrapped error
	message string
}

func (e *InvalidArgumentError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.wrapped
}

// AckError indicates that the server answered a SUBSCRIBE, UNSUBSCRIBE or
// QoS 1 PUBLISH with a failure reason code.
type AckError struct {
	Packet       string
	ReasonCode   byte
	ReasonString string
}

func (e *AckError) Error() string {
	msg := fmt.Sprintf("%s failed with reason code %#x", e.Packet, e.ReasonCode)
	if e.ReasonString != "" {
		msg += ": " + e.ReasonString
	}
	return msg
}
