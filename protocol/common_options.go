// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol

import (
	"context"
	"log/slog"
	"maps"
	"time"
)

type (
	// WithConcurrency indicates how many handlers can execute in parallel.
	// Zero removes the limit.
	WithConcurrency uint

	// WithTimeout applies a timeout to the operation: handler execution for
	// receivers, publish and message expiry for senders.
	WithTimeout time.Duration

	// WithLogger enables logging with the provided slog logger.
	WithLogger struct{ *slog.Logger }

	// WithMetadata specifies user-provided metadata values.
	WithMetadata map[string]string

	// WithErrorHandler is called for every message the receiver drops.
	WithErrorHandler func(context.Context, error)
)

func (o WithConcurrency) telemetryReceiver(opt *TelemetryReceiverOptions) {
	opt.Concurrency = uint(o)
}

func (o WithTimeout) telemetryReceiver(opt *TelemetryReceiverOptions) {
	opt.Timeout = time.Duration(o)
}

func (o WithTimeout) telemetrySender(opt *TelemetrySenderOptions) {
	opt.Timeout = time.Duration(o)
}

func (o WithTimeout) send(opt *SendOptions) {
	opt.Timeout = time.Duration(o)
}

func (o WithLogger) telemetryReceiver(opt *TelemetryReceiverOptions) {
	opt.Logger = o.Logger
}

func (o WithLogger) telemetrySender(opt *TelemetrySenderOptions) {
	opt.Logger = o.Logger
}

func (o WithMetadata) send(opt *SendOptions) {
	if opt.Metadata == nil {
		opt.Metadata = make(map[string]string, len(o))
	}
	maps.Copy(opt.Metadata, o)
}

func (o WithErrorHandler) telemetryReceiver(opt *TelemetryReceiverOptions) {
	opt.OnError = o
}
