// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package retry

import (
	"context"
	"log/slog"

	"github.com/inteli/rssi-dashboard/internal/log"
)

type logger struct{ log.Logger }

func (l *logger) attempt(ctx context.Context, task string, attempt uint64) {
	l.Debug(ctx, "retry",
		slog.String("task", task),
		slog.Uint64("attempt", attempt),
	)
}

func (l *logger) complete(
	ctx context.Context,
	task string,
	attempt uint64,
	err error,
) {
	if err != nil {
		l.Warn(ctx, "retry failed",
			slog.String("task", task),
			slog.Uint64("attempt", attempt),
			slog.String("error", err.Error()),
		)
		return
	}
	// A first-try success is the common case and not worth reporting.
	if attempt > 1 {
		l.Info(ctx, "retry succeeded",
			slog.String("task", task),
			slog.Uint64("attempt", attempt),
		)
	}
}
