// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package wallclock

import (
	"sync"
	"time"
)

// Fixed is a WallClock whose Now advances only when told to. After and
// NewTicker still delegate to the real clock.
type Fixed struct {
	wallClock

	mu  sync.Mutex
	now time.Time
}

// NewFixed creates a clock frozen at the given instant.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

// Now returns the frozen instant.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the frozen instant forward.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Use installs the clock as Instance and returns a func restoring the
// previous one.
func (f *Fixed) Use() func() {
	prev := Instance
	Instance = f
	return func() { Instance = prev }
}
