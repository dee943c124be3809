// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import "context"

type (
	// Message represents a received message.
	Message struct {
		Topic   string
		Payload []byte
		PublishOptions

		// Ack will manually ack the message. All handled messages must be acked
		// (except for QoS 0 messages, in which case this is a no-op).
		Ack func()
	}

	// MessageHandler is a user-defined callback function used to handle
	// messages received on the subscribed topic.
	MessageHandler = func(context.Context, *Message)

	// Subscription represents an open subscription.
	Subscription interface {
		// Topic returns the subscribed topic filter.
		Topic() string

		// Unsubscribe removes the subscription. Once it returns, the handler
		// is no longer called.
		Unsubscribe(context.Context) error
	}

	// ConnectionAttemptEvent is provided to the handler before every attempt
	// to open a network connection. Attempt is 1 for the very first attempt
	// of the client and keeps counting across reconnections.
	ConnectionAttemptEvent struct {
		Attempt uint64
	}

	// ConnectionAttemptEventHandler is a user-defined callback function used
	// to respond to connection attempts of the MQTT client.
	ConnectionAttemptEventHandler = func(*ConnectionAttemptEvent)

	// ConnectEvent contains the relevent metadata provided to the handler when
	// the MQTT client connects to the broker.
	ConnectEvent struct {
		ReasonCode byte
	}

	// ConnectEventHandler is a user-defined callback function used to respond
	// to connection notifications from the MQTT client.
	ConnectEventHandler = func(*ConnectEvent)

	// DisconnectEvent contains the relevent metadata provided to the handler
	// when the MQTT client disconnects from the broker, or fails to connect.
	// ReasonCode is set only when the broker sent a DISCONNECT packet.
	DisconnectEvent struct {
		ReasonCode *byte
		Error      error
	}

	// DisconnectEventHandler is a user-defined callback function used to
	// respond to disconnection notifications from the MQTT client.
	DisconnectEventHandler = func(*DisconnectEvent)

	// FatalErrorHandler is called once when the client gives up reconnecting.
	FatalErrorHandler = func(error)
)
