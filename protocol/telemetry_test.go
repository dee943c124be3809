// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inteli/rssi-dashboard/internal/wallclock"
	"github.com/inteli/rssi-dashboard/protocol"
	"github.com/inteli/rssi-dashboard/protocol/errors"
	"github.com/stretchr/testify/require"
)

const (
	telemetryTopic = "inteli/wifi_signal/rssi"
	waitFor        = 5 * time.Second
)

type reading struct {
	RSSI float64 `json:"rssi"`
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for value")
		panic("unreachable")
	}
}

func TestTelemetryRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newStubClient("esp32_dashboard_test")

	received := make(chan *protocol.TelemetryMessage[reading], 1)
	receiver, err := protocol.NewTelemetryReceiver(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
		func(_ context.Context, msg *protocol.TelemetryMessage[reading]) error {
			received <- msg
			return nil
		},
	)
	require.NoError(t, err)

	stop, err := receiver.Listen(ctx)
	require.NoError(t, err)
	defer stop()

	sender, err := protocol.NewTelemetrySender(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
	)
	require.NoError(t, err)

	require.NoError(t, sender.Send(ctx, reading{RSSI: -42},
		protocol.WithMetadata{"device": "esp32"},
		protocol.WithRetain(true),
	))

	msg := receive(t, received)
	require.Equal(t, reading{RSSI: -42}, msg.Payload)
	require.Equal(t, telemetryTopic, msg.Topic)
	require.Equal(t, "esp32_dashboard_test", msg.ClientID)
	require.Equal(t, map[string]string{"device": "esp32"}, msg.Metadata)
	require.True(t, msg.Retained)
	require.False(t, msg.Timestamp.IsZero())

	pub := client.last()
	require.Equal(t, "application/json", pub.ContentType)
	require.Equal(t, byte(1), pub.PayloadFormat)
	require.Equal(t, byte(1), pub.QoS)
	require.JSONEq(t, `{"rssi":-42}`, string(pub.Payload))

	require.Eventually(t, func() bool {
		return client.acks.Load() == 1
	}, waitFor, time.Millisecond)
}

func TestTelemetryOrdering(t *testing.T) {
	ctx := context.Background()
	client := newStubClient("ordering")

	received := make(chan float64, 64)
	receiver, err := protocol.NewTelemetryReceiver(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
		func(_ context.Context, msg *protocol.TelemetryMessage[reading]) error {
			received <- msg.Payload.RSSI
			return nil
		},
	)
	require.NoError(t, err)
	stop, err := receiver.Listen(ctx)
	require.NoError(t, err)
	defer stop()

	for i := range 64 {
		payload := fmt.Sprintf(`{"rssi": %d}`, -i)
		require.NoError(t, client.Publish(ctx, telemetryTopic, []byte(payload)))
	}
	for i := range 64 {
		require.Equal(t, float64(-i), receive(t, received))
	}
}

func TestTelemetryErrors(t *testing.T) {
	ctx := context.Background()
	client := newStubClient("errors")

	errs := make(chan error, 3)
	receiver, err := protocol.NewTelemetryReceiver(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
		func(_ context.Context, msg *protocol.TelemetryMessage[reading]) error {
			switch msg.Payload.RSSI {
			case -1:
				panic("boom")
			case -2:
				return fmt.Errorf("rejected")
			}
			return nil
		},
		protocol.WithErrorHandler(func(_ context.Context, err error) {
			errs <- err
		}),
	)
	require.NoError(t, err)
	stop, err := receiver.Listen(ctx)
	require.NoError(t, err)
	defer stop()

	publish := func(payload string) {
		require.NoError(t, client.Publish(ctx, telemetryTopic, []byte(payload)))
	}

	kind := func() *errors.Error {
		var e *errors.Error
		require.ErrorAs(t, receive(t, errs), &e)
		return e
	}

	publish(`not json`)
	require.Equal(t, errors.PayloadInvalid, kind().Kind)

	publish(`{"rssi": -1}`)
	e := kind()
	require.Equal(t, errors.ExecutionException, e.Kind)
	require.Equal(t, "boom", e.Message)
	require.True(t, e.InApplication)

	publish(`{"rssi": -2}`)
	e = kind()
	require.Equal(t, errors.ExecutionException, e.Kind)
	require.EqualError(t, e.NestedError, "rejected")

	// Dropped messages are still acked.
	require.Eventually(t, func() bool {
		return client.acks.Load() == 3
	}, waitFor, time.Millisecond)
}

func TestTelemetryContentTypeMismatch(t *testing.T) {
	ctx := context.Background()
	client := newStubClient("content-type")

	errs := make(chan error, 1)
	receiver, err := protocol.NewTelemetryReceiver(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
		func(context.Context, *protocol.TelemetryMessage[reading]) error {
			t.Error("handler should not be called")
			return nil
		},
		protocol.WithErrorHandler(func(_ context.Context, err error) {
			errs <- err
		}),
	)
	require.NoError(t, err)
	stop, err := receiver.Listen(ctx)
	require.NoError(t, err)
	defer stop()

	raw, err := protocol.NewTelemetrySender(client, protocol.Raw{}, telemetryTopic)
	require.NoError(t, err)
	require.NoError(t, raw.Send(ctx, []byte(`{"rssi": -50}`)))

	var e *errors.Error
	require.ErrorAs(t, receive(t, errs), &e)
	require.Equal(t, errors.HeaderInvalid, e.Kind)
	require.Equal(t, "application/octet-stream", e.HeaderValue)
}

func TestTelemetryExecutionTimeout(t *testing.T) {
	ctx := context.Background()
	client := newStubClient("timeout")

	errs := make(chan error, 1)
	receiver, err := protocol.NewTelemetryReceiver(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
		func(ctx context.Context, _ *protocol.TelemetryMessage[reading]) error {
			<-ctx.Done()
			return context.Cause(ctx)
		},
		protocol.WithTimeout(10*time.Millisecond),
		protocol.WithErrorHandler(func(_ context.Context, err error) {
			errs <- err
		}),
	)
	require.NoError(t, err)
	stop, err := receiver.Listen(ctx)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, client.Publish(ctx, telemetryTopic, []byte(`{"rssi": -50}`)))

	var e *errors.Error
	require.ErrorAs(t, receive(t, errs), &e)
	require.Equal(t, errors.Timeout, e.Kind)
	require.Equal(t, "ExecutionTimeout", e.TimeoutName)
}

func TestTelemetryListenStop(t *testing.T) {
	ctx := context.Background()
	client := newStubClient("listen")

	receiver, err := protocol.NewTelemetryReceiver(
		client,
		protocol.Raw{},
		telemetryTopic,
		func(context.Context, *protocol.TelemetryMessage[[]byte]) error {
			return nil
		},
	)
	require.NoError(t, err)

	stop, err := receiver.Listen(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, client.subscribers(telemetryTopic))

	_, err = receiver.Listen(ctx)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.StateInvalid, e.Kind)

	stop()
	stop()
	require.Equal(t, 0, client.subscribers(telemetryTopic))

	// Listening again after a stop is allowed.
	stop, err = receiver.Listen(ctx)
	require.NoError(t, err)
	stop()
}

func TestTelemetryInvalidArguments(t *testing.T) {
	client := newStubClient("args")
	handler := func(context.Context, *protocol.TelemetryMessage[[]byte]) error {
		return nil
	}

	for name, fn := range map[string]func() error{
		"NilClient": func() error {
			_, err := protocol.NewTelemetryReceiver(nil, protocol.Raw{}, telemetryTopic, handler)
			return err
		},
		"NilHandler": func() error {
			_, err := protocol.NewTelemetryReceiver[[]byte](client, protocol.Raw{}, telemetryTopic, nil)
			return err
		},
		"EmptyTopic": func() error {
			_, err := protocol.NewTelemetrySender[[]byte](client, protocol.Raw{}, "")
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			var e *errors.Error
			require.ErrorAs(t, fn(), &e)
			require.Equal(t, errors.ArgumentInvalid, e.Kind)
		})
	}

	for name, fn := range map[string]func() error{
		"ReceiverQoS": func() error {
			_, err := protocol.NewTelemetryReceiver(client, protocol.Raw{}, telemetryTopic, handler, protocol.WithQoS(2))
			return err
		},
		"NegativeTimeout": func() error {
			_, err := protocol.NewTelemetryReceiver(client, protocol.Raw{}, telemetryTopic, handler, protocol.WithTimeout(-time.Second))
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			var e *errors.Error
			require.ErrorAs(t, fn(), &e)
			require.Equal(t, errors.ConfigurationInvalid, e.Kind)
		})
	}
}

func TestTelemetrySenderReservedMetadata(t *testing.T) {
	client := newStubClient("reserved")
	sender, err := protocol.NewTelemetrySender(client, protocol.Raw{}, telemetryTopic)
	require.NoError(t, err)

	err = sender.Send(context.Background(), nil,
		protocol.WithMetadata{protocol.SenderClientID: "spoofed"},
	)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.ArgumentInvalid, e.Kind)
	require.Nil(t, client.last())
}

func TestTelemetrySenderMessageExpiry(t *testing.T) {
	client := newStubClient("expiry")
	sender, err := protocol.NewTelemetrySender(client, protocol.Raw{}, telemetryTopic,
		protocol.WithTimeout(1500*time.Millisecond),
	)
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), []byte("x")))
	require.Equal(t, uint32(2), client.last().MessageExpiry)
}

func TestTelemetryTimestampFromWallClock(t *testing.T) {
	ctx := context.Background()
	clock := wallclock.NewFixed(time.Date(2024, 5, 1, 14, 3, 7, 0, time.Local))
	defer clock.Use()()

	client := newStubClient("esp32_dashboard_test")
	received := make(chan time.Time, 2)
	receiver, err := protocol.NewTelemetryReceiver(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
		func(_ context.Context, msg *protocol.TelemetryMessage[reading]) error {
			received <- msg.Timestamp
			return nil
		},
	)
	require.NoError(t, err)

	stop, err := receiver.Listen(ctx)
	require.NoError(t, err)
	defer stop()

	sender, err := protocol.NewTelemetrySender(
		client,
		protocol.JSON[reading]{},
		telemetryTopic,
	)
	require.NoError(t, err)

	require.NoError(t, sender.Send(ctx, reading{RSSI: -60}))
	first := receive(t, received)

	clock.Advance(time.Second)
	require.NoError(t, sender.Send(ctx, reading{RSSI: -61}))
	second := receive(t, received)

	require.Equal(t, "14:03:07", first.Format("15:04:05"))
	require.Equal(t, time.Second, second.Sub(first))
}
