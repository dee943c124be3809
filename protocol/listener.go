// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inteli/rssi-dashboard/internal/log"
	"github.com/inteli/rssi-dashboard/internal/mqtt"
	"github.com/inteli/rssi-dashboard/internal/wallclock"
	"github.com/inteli/rssi-dashboard/protocol/errors"
	"github.com/inteli/rssi-dashboard/protocol/internal"
)

// SenderClientID is the user property carrying the publisher's client ID.
const SenderClientID = "__srcId"

type (
	// Provide the shared implementation details for the MQTT listeners.
	listener[T any] struct {
		client   MqttClient
		encoding Encoding[T]
		topic    string
		qos      byte
		limit    uint
		timeout  *internal.Timeout
		log      log.Logger
		handler  interface {
			onMsg(context.Context, *mqtt.Message, *Message[T]) error
			onErr(context.Context, *mqtt.Message, error)
		}

		mu   sync.Mutex
		sub  mqtt.Subscription
		stop func()
	}
)

func (l *listener[T]) listen(ctx context.Context) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sub != nil {
		return nil, &errors.Error{
			Message: "listener is already listening",
			Kind:    errors.StateInvalid,
		}
	}

	handle, stop := internal.Concurrent(l.limit, l.handle)
	sub, err := l.client.Subscribe(
		ctx,
		l.topic,
		func(ctx context.Context, pub *mqtt.Message) {
			handle(ctx, pub)
		},
		mqtt.WithQoS(l.qos),
	)
	if err != nil {
		stop()
		return nil, &errors.Error{
			Message:     "cannot subscribe",
			Kind:        errors.MqttError,
			NestedError: err,
		}
	}

	l.sub = sub
	l.stop = stop
	l.log.Info(ctx, "listening", slog.String("topic", l.topic))
	return sync.OnceFunc(func() { l.close(context.WithoutCancel(ctx)) }), nil
}

func (l *listener[T]) close(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sub == nil {
		return
	}
	if err := l.sub.Unsubscribe(ctx); err != nil {
		// Returning an error from a close function that is most likely to
		// be deferred is rarely useful, so just log it.
		l.log.Err(ctx, err)
	}
	l.stop()
	l.sub, l.stop = nil, nil
}

func (l *listener[T]) handle(ctx context.Context, pub *mqtt.Message) {
	// Telemetry is acked whether or not it was handled successfully, since
	// redelivery would not change the outcome.
	if pub.Ack != nil {
		defer pub.Ack()
	}

	msg := &Message[T]{
		Topic:     pub.Topic,
		Timestamp: wallclock.Instance.Now(),
		Metadata:  make(map[string]string, len(pub.UserProperties)),
	}
	for k, v := range pub.UserProperties {
		if k == SenderClientID {
			msg.ClientID = v
			continue
		}
		msg.Metadata[k] = v
	}

	payload, err := deserialize(l.encoding, &Data{
		Payload:       pub.Payload,
		ContentType:   pub.ContentType,
		PayloadFormat: pub.PayloadFormat,
	})
	if err != nil {
		l.drop(ctx, pub, err)
		return
	}
	msg.Payload = payload

	if err := l.execute(ctx, pub, msg); err != nil {
		l.drop(ctx, pub, err)
	}
}

// Run the user handler under the execution timeout, recovering from panics.
func (l *listener[T]) execute(
	ctx context.Context,
	pub *mqtt.Message,
	msg *Message[T],
) (err error) {
	ctx, cancel := l.timeout.Context(ctx)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = &errors.Error{
				Message:       fmt.Sprint(r),
				Kind:          errors.ExecutionException,
				InApplication: true,
			}
		}
	}()

	if err = l.handler.onMsg(ctx, pub, msg); err != nil {
		if _, ok := err.(*errors.Error); !ok {
			err = &errors.Error{
				Message:       err.Error(),
				Kind:          errors.ExecutionException,
				NestedError:   err,
				InApplication: true,
			}
		}
	}
	return err
}

func (l *listener[T]) drop(ctx context.Context, pub *mqtt.Message, err error) {
	l.log.Warn(ctx, "message dropped",
		slog.String("topic", pub.Topic),
		slog.String("error", err.Error()),
	)
	l.handler.onErr(ctx, pub, err)
}
