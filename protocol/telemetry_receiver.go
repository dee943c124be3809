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
	// TelemetryReceiver provides the ability to handle the receipt of a
	// single telemetry.
	TelemetryReceiver[T any] struct {
		listener *listener[T]
		handler  TelemetryHandler[T]
		onError  func(context.Context, error)
	}

	// TelemetryReceiverOption represents a single telemetry receiver option.
	TelemetryReceiverOption interface {
		telemetryReceiver(*TelemetryReceiverOptions)
	}

	// TelemetryReceiverOptions are the resolved telemetry receiver options.
	TelemetryReceiverOptions struct {
		Concurrency uint
		QoS         byte
		Timeout     time.Duration
		OnError     func(context.Context, error)
		Logger      *slog.Logger
	}

	// TelemetryHandler is the user-provided implementation of a single
	// telemetry event handler. It is treated as blocking; all parallelism is
	// handled by the library.
	TelemetryHandler[T any] func(context.Context, *TelemetryMessage[T]) error

	// TelemetryMessage contains per-message data and methods that are exposed
	// to the telemetry handlers.
	TelemetryMessage[T any] struct {
		Message[T]

		// Retained indicates the broker delivered a retained message.
		Retained bool
	}

	// WithQoS sets the subscription QoS of the receiver.
	WithQoS byte
)

const telemetryReceiverErrStr = "telemetry receipt"

// NewTelemetryReceiver creates a new telemetry receiver.
func NewTelemetryReceiver[T any](
	client MqttClient,
	encoding Encoding[T],
	topic string,
	handler TelemetryHandler[T],
	opt ...TelemetryReceiverOption,
) (tr *TelemetryReceiver[T], err error) {
	opts := TelemetryReceiverOptions{Concurrency: 1, QoS: 1}
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
	case handler == nil:
		return nil, argumentError("handler", "handler cannot be nil")
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

	to := &internal.Timeout{
		Duration: opts.Timeout,
		Name:     "ExecutionTimeout",
		Text:     telemetryReceiverErrStr,
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}

	tr = &TelemetryReceiver[T]{handler: handler, onError: opts.OnError}
	tr.listener = &listener[T]{
		client:   client,
		encoding: encoding,
		topic:    topic,
		qos:      opts.QoS,
		limit:    opts.Concurrency,
		timeout:  to,
		log:      logger,
		handler:  tr,
	}
	return tr, nil
}

// Listen subscribes to the telemetry topic and starts handling messages. The
// returned function unsubscribes and stops handling.
func (tr *TelemetryReceiver[T]) Listen(ctx context.Context) (func(), error) {
	return tr.listener.listen(ctx)
}

func (tr *TelemetryReceiver[T]) onMsg(
	ctx context.Context,
	pub *mqtt.Message,
	msg *Message[T],
) error {
	return tr.handler(ctx, &TelemetryMessage[T]{
		Message:  *msg,
		Retained: pub.Retain,
	})
}

func (tr *TelemetryReceiver[T]) onErr(
	ctx context.Context,
	_ *mqtt.Message,
	err error,
) {
	if tr.onError != nil {
		tr.onError(ctx, err)
	}
}

func argumentError(name, msg string) *errors.Error {
	return &errors.Error{
		Message:      msg,
		Kind:         errors.ArgumentInvalid,
		PropertyName: name,
	}
}

// Apply resolves the provided list of options.
func (o *TelemetryReceiverOptions) Apply(
	opts []TelemetryReceiverOption,
	rest ...TelemetryReceiverOption,
) {
	for opt := range options.Apply[TelemetryReceiverOption](opts, rest...) {
		opt.telemetryReceiver(o)
	}
}

func (o *TelemetryReceiverOptions) telemetryReceiver(
	opt *TelemetryReceiverOptions,
) {
	if o != nil {
		*opt = *o
	}
}

func (o WithQoS) telemetryReceiver(opt *TelemetryReceiverOptions) {
	opt.QoS = byte(o)
}
