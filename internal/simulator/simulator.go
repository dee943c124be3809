// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package simulator stands in for the ESP32 by publishing a random walk of
// RSSI readings.
package simulator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/inteli/rssi-dashboard/internal/log"
	"github.com/inteli/rssi-dashboard/internal/wallclock"
	"github.com/inteli/rssi-dashboard/protocol"
	"github.com/inteli/rssi-dashboard/rssi"
)

// Walk bounds in dBm.
const (
	Floor   = -95
	Ceiling = -30
)

type (
	// Walk produces integer readings that drift by at most MaxStep per call
	// and stay within [Floor, Ceiling].
	Walk struct {
		rand    *rand.Rand
		value   int
		MaxStep int
	}

	// Sender publishes one reading. *protocol.TelemetrySender[rssi.Reading]
	// satisfies it.
	Sender interface {
		Send(ctx context.Context, r rssi.Reading, opt ...protocol.SendOption) error
	}
)

// NewWalk starts a walk at start, clamped to the bounds.
func NewWalk(seed uint64, start int) *Walk {
	return &Walk{
		rand:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		value:   clamp(start),
		MaxStep: 3,
	}
}

// Next advances the walk and returns the new value.
func (w *Walk) Next() float64 {
	step := max(w.MaxStep, 0)
	w.value = clamp(w.value + w.rand.IntN(2*step+1) - step)
	return float64(w.value)
}

func clamp(v int) int {
	return min(max(v, Floor), Ceiling)
}

// Run sends the next reading of the walk every period until ctx is cancelled.
// Failed sends are logged and skipped.
func Run(
	ctx context.Context,
	sender Sender,
	walk *Walk,
	period time.Duration,
	logger *slog.Logger,
) error {
	l := log.Wrap(logger)
	ticker := wallclock.Instance.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}

		value := walk.Next()
		if err := sender.Send(ctx, rssi.ValidSample{Value: value}); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Err(ctx, err)
			continue
		}
		l.Debug(ctx, "reading sent", slog.Float64("rssi", value))
	}
}
