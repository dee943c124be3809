// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package internal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/inteli/rssi-dashboard/protocol/errors"
)

// Timeout applies an optional deadline to handler executions or publishes.
type Timeout struct {
	time.Duration
	Name string
	Text string
}

// Validate rejects negative or unrepresentable durations.
func (to *Timeout) Validate() error {
	switch {
	case to.Duration < 0:
		return &errors.Error{
			Message:       fmt.Sprintf("%s cannot be negative", to.Name),
			Kind:          errors.ConfigurationInvalid,
			PropertyName:  to.Name,
			PropertyValue: to.Duration,
		}
	case to.Seconds() > math.MaxUint32:
		return &errors.Error{
			Message:       fmt.Sprintf("%s too large", to.Name),
			Kind:          errors.ConfigurationInvalid,
			PropertyName:  to.Name,
			PropertyValue: to.Duration,
		}
	default:
		return nil
	}
}

// Context derives a context that expires after the duration, or just a
// cancellable one if the duration is zero.
func (to *Timeout) Context(
	ctx context.Context,
) (context.Context, context.CancelFunc) {
	if to.Duration == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeoutCause(ctx, to.Duration, &errors.Error{
		Message:      fmt.Sprintf("%s timed out", to.Text),
		Kind:         errors.Timeout,
		TimeoutName:  to.Name,
		TimeoutValue: to.Duration,
	})
}

// MessageExpiry returns the duration in whole seconds, rounded up.
func (to *Timeout) MessageExpiry() uint32 {
	return uint32(math.Ceil(to.Seconds()))
}
