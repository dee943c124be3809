// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import "github.com/inteli/rssi-dashboard/internal/mqtt"

// The shared message and event types are aliased so callers only need to
// import this package.
type (
	Message                       = mqtt.Message
	MessageHandler                = mqtt.MessageHandler
	Subscription                  = mqtt.Subscription
	ConnectionAttemptEvent        = mqtt.ConnectionAttemptEvent
	ConnectionAttemptEventHandler = mqtt.ConnectionAttemptEventHandler
	ConnectEvent                  = mqtt.ConnectEvent
	ConnectEventHandler           = mqtt.ConnectEventHandler
	DisconnectEvent               = mqtt.DisconnectEvent
	DisconnectEventHandler        = mqtt.DisconnectEventHandler
	FatalErrorHandler             = mqtt.FatalErrorHandler

	SubscribeOptions = mqtt.SubscribeOptions
	SubscribeOption  = mqtt.SubscribeOption
	PublishOptions   = mqtt.PublishOptions
	PublishOption    = mqtt.PublishOption

	WithContentType    = mqtt.WithContentType
	WithMessageExpiry  = mqtt.WithMessageExpiry
	WithNoLocal        = mqtt.WithNoLocal
	WithPayloadFormat  = mqtt.WithPayloadFormat
	WithQoS            = mqtt.WithQoS
	WithRetain         = mqtt.WithRetain
	WithUserProperties = mqtt.WithUserProperties
)
