// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

import "time"

// State is everything the dashboard knows about the current session. It is
// only ever replaced, never mutated, so any copy is safe to read from other
// goroutines.
type State struct {
	Window     Window
	Extremes   Extremes
	Connection ConnectionState
	// LastError is the error behind the most recent Error transition.
	LastError error
	// Accepted counts every accepted sample, including evicted ones.
	Accepted uint64
}

// NewState returns the initial session state with an empty window.
func NewState(capacity int) State {
	return State{Window: NewWindow(capacity), Connection: Disconnected}
}

// Event is an input to Reduce.
type Event interface {
	event()
}

// SampleReceived reports an accepted value and its receipt time.
type SampleReceived struct {
	Value float64
	At    time.Time
}

// ConnectionChanged reports a session lifecycle transition.
type ConnectionChanged struct {
	State ConnectionState
	Err   error
}

func (SampleReceived) event()    {}
func (ConnectionChanged) event() {}

// Reduce applies one event to a state and returns the next state. It has no
// side effects and does not modify s.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case SampleReceived:
		s.Extremes = s.Extremes.Observe(e.Value)
		s.Window = s.Window.Append(NewSample(e.Value, e.At))
		s.Accepted++
	case ConnectionChanged:
		s.Connection = e.State
		if e.State == Error {
			s.LastError = e.Err
		} else if e.State == Connected {
			s.LastError = nil
		}
	}
	return s
}

// Quality classifies the latest value of the session.
func (s State) Quality() Band {
	return ClassifyLatest(s.Extremes.Latest())
}
