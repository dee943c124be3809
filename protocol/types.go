// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol

import (
	"context"
	"time"

	"github.com/inteli/rssi-dashboard/internal/mqtt"
)

type (
	// MqttClient is the client used for the underlying MQTT connection.
	MqttClient interface {
		ID() string
		Publish(
			ctx context.Context,
			topic string,
			payload []byte,
			opts ...mqtt.PublishOption,
		) error
		Subscribe(
			ctx context.Context,
			topic string,
			handler mqtt.MessageHandler,
			opts ...mqtt.SubscribeOption,
		) (mqtt.Subscription, error)
	}

	// Message contains common message data that is exposed to message
	// handlers.
	Message[T any] struct {
		// The message payload.
		Payload T

		// The topic the message arrived on.
		Topic string

		// The ID of the calling MQTT client, if the sender set one.
		ClientID string

		// When the message was received.
		Timestamp time.Time

		// Any user-provided metadata values.
		Metadata map[string]string
	}
)
