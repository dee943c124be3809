// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

import "iter"

// DefaultCapacity is the number of samples retained for charting.
const DefaultCapacity = 60

// Window is a bounded history of samples in arrival order. It is a value
// type: Append never mutates the receiver, so a Window handed to a renderer
// stays stable while newer windows are built from it.
type Window struct {
	capacity int
	samples  []Sample
}

// NewWindow creates an empty window holding at most capacity samples. A
// non-positive capacity selects DefaultCapacity.
func NewWindow(capacity int) Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return Window{capacity: capacity}
}

// Capacity returns the maximum number of retained samples.
func (w Window) Capacity() int {
	if w.capacity <= 0 {
		return DefaultCapacity
	}
	return w.capacity
}

// Len returns the number of retained samples.
func (w Window) Len() int {
	return len(w.samples)
}

// Append returns a window with s added at the end. If that would exceed the
// capacity, the oldest samples are dropped so exactly Capacity remain.
func (w Window) Append(s Sample) Window {
	limit := w.Capacity()
	total := len(w.samples) + 1

	drop := max(total-limit, 0)
	next := make([]Sample, 0, min(total, limit))
	next = append(next, w.samples[drop:]...)
	next = append(next, s)

	return Window{capacity: limit, samples: next}
}

// Samples returns a copy of the retained samples, oldest first.
func (w Window) Samples() []Sample {
	out := make([]Sample, len(w.samples))
	copy(out, w.samples)
	return out
}

// All iterates the retained samples, oldest first.
func (w Window) All() iter.Seq2[int, Sample] {
	return func(yield func(int, Sample) bool) {
		for i, s := range w.samples {
			if !yield(i, s) {
				return
			}
		}
	}
}

// First returns the oldest retained sample.
func (w Window) First() (Sample, bool) {
	if len(w.samples) == 0 {
		return Sample{}, false
	}
	return w.samples[0], true
}

// Last returns the most recently appended sample.
func (w Window) Last() (Sample, bool) {
	if len(w.samples) == 0 {
		return Sample{}, false
	}
	return w.samples[len(w.samples)-1], true
}
