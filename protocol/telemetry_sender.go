// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol

import (
	"context"
	"log/slog"
	"time"

	"github.com/inteli/rssi-dashboard/internal/log"
	"github.com/inteli/rssi-dashboard/internal/mqtt"
	"github.com/inteli/rssi-dashboard/internal/options"
	"github.com/inteli/rssi-dashboard/protocol/errors"
	"github.com/inteli/rssi-dashboard/protocol/internal"
)

type (
	// TelemetrySender provides the ability to send a single telemetry.
	TelemetrySender[T any] struct {
		client   MqttClient
		encoding Encoding[T]
		topic    string
		qos      byte
		timeout  time.Duration
		log      log.Logger
	}

	// TelemetrySenderOption represents a single telemetry sender option.
	TelemetrySenderOption interface{ telemetrySender(*TelemetrySenderOptions) }

	// TelemetrySenderOptions are the resolved telemetry sender options.
	TelemetrySenderOptions struct {
		QoS     byte
		Timeout time.Duration
		Logger  *slog.Logger
	}

	// SendOption represent a single per-send option.
	SendOption interface{ send(*SendOptions) }

	// SendOptions are the resolved per-send options.
	SendOptions struct {
		Retain   bool
		Timeout  time.Duration
		Metadata map[string]string
	}

	// WithRetain indicates that the telemetry event should be retained by
	// the broker.
	WithRetain bool
)

const telemetrySenderErrStr = "telemetry send"

// NewTelemetrySender creates a new telemetry sender.
func NewTelemetrySender[T any](
	client MqttClient,
	encoding Encoding[T],
	topic string,
	opt ...TelemetrySenderOption,
) (ts *TelemetrySender[T], err error) {
	opts := TelemetrySenderOptions{QoS: 1}
	opts.Apply(opt)
	logger := log.Wrap(opts.Logger)

	defer func() {
		if err != nil {
			logger.Err(context.Background(), err)
		}
	}()

	switch {
	case client == nil:
		return nil, argumentError("client", "client cannot be nil")
	case encoding == nil:
		return nil, argumentError("encoding", "encoding cannot be nil")
	case topic == "":
		return nil, argumentError("topic", "topic cannot be empty")
	case opts.QoS > 1:
		return nil, &errors.Error{
			Message:       "unsupported QoS",
			Kind:          errors.ConfigurationInvalid,
			PropertyName:  "QoS",
			PropertyValue: opts.QoS,
		}
	}

	return &TelemetrySender[T]{
		client:   client,
		encoding: encoding,
		topic:    topic,
		qos:      opts.QoS,
		timeout:  opts.Timeout,
		log:      logger,
	}, nil
}

// Send emits the telemetry. This will block until the message is ack'd.
func (ts *TelemetrySender[T]) Send(
	ctx context.Context,
	val T,
	opt ...SendOption,
) (err error) {
	opts := SendOptions{Timeout: ts.timeout}
	opts.Apply(opt)

	defer func() {
		if err != nil {
			ts.log.Err(ctx, err)
		}
	}()

	to := &internal.Timeout{
		Duration: opts.Timeout,
		Name:     "MessageExpiry",
		Text:     telemetrySenderErrStr,
	}
	if err := to.Validate(); err != nil {
		return err
	}

	data, err := serialize(ts.encoding, val)
	if err != nil {
		return err
	}

	props := map[string]string{SenderClientID: ts.client.ID()}
	for k, v := range opts.Metadata {
		if k == SenderClientID {
			return &errors.Error{
				Message:       "metadata key is reserved",
				Kind:          errors.ArgumentInvalid,
				PropertyName:  "Metadata",
				PropertyValue: k,
			}
		}
		props[k] = v
	}

	pubOpts := []mqtt.PublishOption{
		mqtt.WithContentType(data.ContentType),
		mqtt.WithPayloadFormat(data.PayloadFormat),
		mqtt.WithQoS(ts.qos),
		mqtt.WithRetain(opts.Retain),
		mqtt.WithUserProperties(props),
	}
	if opts.Timeout > 0 {
		pubOpts = append(pubOpts, mqtt.WithMessageExpiry(to.MessageExpiry()))
	}

	ctx, cancel := to.Context(ctx)
	defer cancel()

	ts.log.Debug(ctx, "sending telemetry", slog.String("topic", ts.topic))
	if err := ts.client.Publish(ctx, ts.topic, data.Payload, pubOpts...); err != nil {
		if e, ok := err.(*errors.Error); ok {
			return e
		}
		return &errors.Error{
			Message:     "cannot publish telemetry",
			Kind:        errors.MqttError,
			NestedError: err,
		}
	}
	return nil
}

// Apply resolves the provided list of options.
func (o *TelemetrySenderOptions) Apply(
	opts []TelemetrySenderOption,
	rest ...TelemetrySenderOption,
) {
	for opt := range options.Apply[TelemetrySenderOption](opts, rest...) {
		opt.telemetrySender(o)
	}
}

func (o *TelemetrySenderOptions) telemetrySender(opt *TelemetrySenderOptions) {
	if o != nil {
		*opt = *o
	}
}

// Apply resolves the provided list of options.
func (o *SendOptions) Apply(
	opts []SendOption,
	rest ...SendOption,
) {
	for opt := range options.Apply[SendOption](opts, rest...) {
		opt.send(o)
	}
}

func (o *SendOptions) send(opt *SendOptions) {
	if o != nil {
		*opt = *o
	}
}

func (o WithQoS) telemetrySender(opt *TelemetrySenderOptions) {
	opt.QoS = byte(o)
}

func (o WithRetain) send(opt *SendOptions) {
	opt.Retain = bool(o)
}
