// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package internal

import (
	"iter"
	"sync"
)

// HandlerList is an ordered set of callbacks that can be removed
// individually. Iteration works on a snapshot, so handlers may register or
// remove entries while being called.
type HandlerList[T any] struct {
	mu      sync.Mutex
	next    uint64
	entries []entry[T]
}

type entry[T any] struct {
	id    uint64
	value T
}

func NewHandlerList[T any]() *HandlerList[T] {
	return &HandlerList[T]{}
}

// Add appends value and returns a func that removes it. The func is
// idempotent.
func (l *HandlerList[T]) Add(value T) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	id := l.next

	// Copy on write so snapshots handed to All stay valid.
	entries := make([]entry[T], len(l.entries), len(l.entries)+1)
	copy(entries, l.entries)
	l.entries = append(entries, entry[T]{id, value})

	return sync.OnceFunc(func() { l.remove(id) })
}

func (l *HandlerList[T]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]entry[T], 0, len(l.entries))
	for _, e := range l.entries {
		if e.id != id {
			entries = append(entries, e)
		}
	}
	l.entries = entries
}

// Len returns the number of registered values.
func (l *HandlerList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// All iterates the values registered at the time of the call, in order.
func (l *HandlerList[T]) All() iter.Seq[T] {
	l.mu.Lock()
	entries := l.entries
	l.mu.Unlock()

	return func(yield func(T) bool) {
		for _, e := range entries {
			if !yield(e.value) {
				return
			}
		}
	}
}
