// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package retry

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/inteli/rssi-dashboard/internal/log"
	"github.com/inteli/rssi-dashboard/internal/wallclock"
)

// ExponentialBackoff implements a retry policy with exponential backoff and
// optional jitter. Setting MinInterval equal to MaxInterval with NoJitter
// yields a fixed retry period.
type ExponentialBackoff struct {
	// MaxAttempts sets the maximum number of attempts. The default value of 0
	// indicates unlimited attempts; setting this to 1 will disable retries.
	MaxAttempts uint64

	// MinInterval is the interval before the first retry (before jitter).
	// Will be set to a default of 1/8s if unspecified.
	MinInterval time.Duration

	// MaxInterval is the maximum interval between retries (before jitter).
	// Will be set to a default of 30s if unspecified.
	MaxInterval time.Duration

	// Timeout is the total timeout for all retries.
	Timeout time.Duration

	// NoJitter removes the default jitter.
	NoJitter bool

	// Logger provides a logger which will be used to log retry attempts and
	// results.
	Logger *slog.Logger
}

// Fixed returns a policy that retries forever, waiting exactly period
// between attempts.
func Fixed(period time.Duration, logger *slog.Logger) *ExponentialBackoff {
	return &ExponentialBackoff{
		MinInterval: period,
		MaxInterval: period,
		NoJitter:    true,
		Logger:      logger,
	}
}

// Start initiates the retry executions.
func (e *ExponentialBackoff) Start(
	ctx context.Context,
	name string,
	task Task,
) error {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	l := logger{log.Wrap(e.Logger)}

	for attempt := uint64(1); ; attempt++ {
		l.attempt(ctx, name, attempt)
		retry, err := task(ctx)
		if err == nil {
			l.complete(ctx, name, attempt, nil)
			return nil
		}

		interval := e.next(ctx, attempt, retry)
		if interval == 0 {
			l.complete(ctx, name, attempt, err)
			return err
		}

		select {
		case <-wallclock.Instance.After(interval):
		case <-ctx.Done():
			l.complete(ctx, name, attempt, ctx.Err())
			return ctx.Err()
		}
	}
}

// Interval returns the wait after the given (1-based) failed attempt, before
// jitter is applied.
func (e *ExponentialBackoff) Interval(attempt uint64) time.Duration {
	minInterval := e.MinInterval
	if minInterval <= 0 {
		minInterval = time.Second / 8
	}

	maxInterval := e.MaxInterval
	if maxInterval <= 0 {
		maxInterval = 30 * time.Second
	}
	maxInterval = max(maxInterval, minInterval)

	// Double per attempt; stop at the cap before the shift could overflow.
	interval := minInterval
	for i := uint64(1); i < attempt; i++ {
		if interval > maxInterval/2 {
			return maxInterval
		}
		interval <<= 1
	}
	return interval
}

// Returns zero when no further attempt should be made.
func (e *ExponentialBackoff) next(
	ctx context.Context,
	attempt uint64,
	retry bool,
) time.Duration {
	switch {
	case !retry,
		attempt == e.MaxAttempts,
		ctx.Err() != nil:
		return 0
	}

	interval := e.Interval(attempt)
	if !e.NoJitter {
		interval = jitter(interval)
	}
	return interval
}

// Add random jitter between 95% and 105% of the base interval to avoid
// synchronized retries.
func jitter(base time.Duration) time.Duration {
	// #nosec G404
	j := rand.New(rand.NewSource(wallclock.Instance.Now().UnixNano())).Float64()
	return time.Duration(float64(base) * (.95 + .1*j))
}
