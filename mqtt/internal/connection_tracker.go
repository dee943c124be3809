// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package internal

import (
	"context"
	"iter"
	"sync"
)

type (
	// ConnectionTracker records which client instance (if any) is currently
	// connected, and lets operations wait for a connection to come up.
	ConnectionTracker[Client comparable] struct {
		mu      sync.RWMutex
		current Connection[Client]
	}

	// Connection is a point-in-time copy of the tracked state.
	Connection[Client comparable] struct {
		// Client is the connected instance, or the zero value when down.
		Client Client

		// Error is the first error reported for the current attempt.
		Error error

		// Attempt counts every connection attempt, including failed ones.
		Attempt uint64

		// Closed when a connection comes up.
		up chan struct{}

		// Closed when the connection goes down. Always closed while there is
		// no connected client.
		Down *Background
	}
)

func NewConnectionTracker[Client comparable]() *ConnectionTracker[Client] {
	t := &ConnectionTracker[Client]{}
	t.current.up = make(chan struct{})
	t.current.Down = NewBackground(context.Canceled)
	t.current.Down.Close()
	return t
}

// Attempt starts a new connection attempt and returns its number.
func (t *ConnectionTracker[Client]) Attempt() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current.Error = nil
	t.current.Attempt++
	return t.current.Attempt
}

// Connect marks client as connected. If a disconnect for the current attempt
// was already reported, the client is not recorded and that error returned.
func (t *ConnectionTracker[Client]) Connect(client Client) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Error != nil {
		return t.current.Error
	}

	t.current.Client = client
	close(t.current.up)
	t.current.Down = NewBackground(context.Canceled)
	return nil
}

// Disconnect records err against the given attempt. It returns true only if
// this call took a connected client down; stale attempts and repeated reports
// are ignored.
func (t *ConnectionTracker[Client]) Disconnect(attempt uint64, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Attempt != attempt {
		return false
	}
	if t.current.Error == nil {
		t.current.Error = err
	}

	var zero Client
	if t.current.Client == zero {
		return false
	}

	t.current.Client = zero
	t.current.up = make(chan struct{})
	t.current.Down.Close()
	return true
}

func (t *ConnectionTracker[Client]) Current() Connection[Client] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Client yields the connected client along with a context that is cancelled
// if that connection drops. Continuing the loop waits for the next connection
// and yields again; the sequence only ends when ctx is done or the caller
// breaks out.
func (t *ConnectionTracker[Client]) Client(
	ctx context.Context,
) iter.Seq2[context.Context, Client] {
	return func(yield func(context.Context, Client) bool) {
		var zero Client
		for {
			current := t.Current()
			if current.Client == zero {
				select {
				case <-ctx.Done():
					return
				case <-current.up:
					continue
				}
			}

			if !func() bool {
				connCtx, cancel := current.Down.With(ctx)
				defer cancel()
				return yield(connCtx, current.Client)
			}() {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-current.Down.Done():
			}
		}
	}
}
