// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

// Extremes tracks the latest, maximum and minimum values over every accepted
// sample of the session. Eviction from the Window does not affect it, so the
// maximum or minimum may refer to a sample that is no longer visible.
type Extremes struct {
	latest, maximum, minimum optional
}

type optional struct {
	value float64
	set   bool
}

// Observe returns the extremes updated with a newly accepted value.
func (e Extremes) Observe(value float64) Extremes {
	e.latest = optional{value, true}
	if !e.maximum.set || value > e.maximum.value {
		e.maximum = optional{value, true}
	}
	if !e.minimum.set || value < e.minimum.value {
		e.minimum = optional{value, true}
	}
	return e
}

// Latest returns the most recent value, if any sample has been accepted.
func (e Extremes) Latest() (float64, bool) {
	return e.latest.value, e.latest.set
}

// Maximum returns the largest value seen, if any.
func (e Extremes) Maximum() (float64, bool) {
	return e.maximum.value, e.maximum.set
}

// Minimum returns the smallest value seen, if any.
func (e Extremes) Minimum() (float64, bool) {
	return e.minimum.value, e.minimum.set
}
