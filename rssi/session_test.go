// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi_test

import (
	"errors"
	"testing"
	"time"

	"github.com/inteli/rssi-dashboard/rssi"
	"github.com/stretchr/testify/require"
)

func ingest(s rssi.State, vals ...float64) rssi.State {
	for i, v := range vals {
		s = rssi.Reduce(s, rssi.SampleReceived{
			Value: v,
			At:    epoch.Add(time.Duration(i) * time.Second),
		})
	}
	return s
}

func TestReduceScenario(t *testing.T) {
	s := ingest(rssi.NewState(rssi.DefaultCapacity), -40, -65, -95, -72)

	require.Equal(t, []float64{-40, -65, -95, -72}, values(s.Window))
	require.Equal(t, uint64(4), s.Accepted)

	latest, ok := s.Extremes.Latest()
	require.True(t, ok)
	require.Equal(t, -72.0, latest)

	maximum, ok := s.Extremes.Maximum()
	require.True(t, ok)
	require.Equal(t, -40.0, maximum)

	minimum, ok := s.Extremes.Minimum()
	require.True(t, ok)
	require.Equal(t, -95.0, minimum)

	require.Equal(t, rssi.Good, s.Quality())
}

func TestReduceExtremesSurviveEviction(t *testing.T) {
	vals := make([]float64, 65)
	for i := range vals {
		vals[i] = float64(i)
	}
	s := ingest(rssi.NewState(rssi.DefaultCapacity), vals...)

	require.Equal(t, rssi.DefaultCapacity, s.Window.Len())
	first, _ := s.Window.First()
	require.Equal(t, 5.0, first.Value)

	minimum, _ := s.Extremes.Minimum()
	require.Equal(t, 0.0, minimum)
	maximum, _ := s.Extremes.Maximum()
	require.Equal(t, 64.0, maximum)
	require.Equal(t, uint64(65), s.Accepted)
}

func TestReduceInitialState(t *testing.T) {
	s := rssi.NewState(0)
	require.Equal(t, rssi.Disconnected, s.Connection)
	require.Equal(t, rssi.DefaultCapacity, s.Window.Capacity())
	require.Equal(t, rssi.NotAvailable, s.Quality())

	_, ok := s.Extremes.Latest()
	require.False(t, ok)
}

func TestReduceIsPure(t *testing.T) {
	before := ingest(rssi.NewState(3), -50, -60)
	after := rssi.Reduce(before, rssi.SampleReceived{Value: -70, At: epoch})

	require.Equal(t, []float64{-50, -60}, values(before.Window))
	require.Equal(t, uint64(2), before.Accepted)
	latest, _ := before.Extremes.Latest()
	require.Equal(t, -60.0, latest)

	require.Equal(t, []float64{-50, -60, -70}, values(after.Window))

	// Two sessions fed from the same state evolve independently.
	left := ingest(after, -10)
	right := ingest(after, -99)
	require.Equal(t, []float64{-60, -70, -10}, values(left.Window))
	require.Equal(t, []float64{-60, -70, -99}, values(right.Window))
}

func TestReduceConnection(t *testing.T) {
	boom := errors.New("boom")
	s := rssi.NewState(0)

	for _, step := range []struct {
		state rssi.ConnectionState
		err   error
		last  error
	}{
		{rssi.Connecting, nil, nil},
		{rssi.Error, boom, boom},
		{rssi.Reconnecting, nil, boom},
		{rssi.Connected, nil, nil},
		{rssi.Disconnected, nil, nil},
	} {
		s = rssi.Reduce(s, rssi.ConnectionChanged{State: step.state, Err: step.err})
		require.Equal(t, step.state, s.Connection)
		require.Equal(t, step.last, s.LastError)
	}

	// Connection changes never touch the samples.
	s = ingest(s, -42)
	s = rssi.Reduce(s, rssi.ConnectionChanged{State: rssi.Reconnecting})
	require.Equal(t, []float64{-42}, values(s.Window))
}

func TestConnectionStateText(t *testing.T) {
	for state, text := range map[rssi.ConnectionState][2]string{
		rssi.Disconnected: {"disconnected", "Disconnected"},
		rssi.Connecting:   {"connecting", "Connecting..."},
		rssi.Connected:    {"connected", "Connected"},
		rssi.Reconnecting: {"reconnecting", "Reconnecting..."},
		rssi.Error:        {"error", "Connection error"},
	} {
		require.Equal(t, text[0], state.String())
		require.Equal(t, text[1], state.StatusText())
		require.Equal(t, state == rssi.Connected, state.IsConnected())
	}
}
