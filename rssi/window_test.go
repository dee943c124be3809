// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi_test

import (
	"testing"
	"time"

	"github.com/inteli/rssi-dashboard/rssi"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 14, 3, 7, 0, time.Local)

func values(w rssi.Window) []float64 {
	var out []float64
	for _, s := range w.All() {
		out = append(out, s.Value)
	}
	return out
}

func TestWindowDefaultCapacity(t *testing.T) {
	require.Equal(t, rssi.DefaultCapacity, rssi.NewWindow(0).Capacity())
	require.Equal(t, rssi.DefaultCapacity, rssi.NewWindow(-3).Capacity())
	require.Equal(t, rssi.DefaultCapacity, rssi.Window{}.Capacity())
	require.Equal(t, 5, rssi.NewWindow(5).Capacity())
}

func TestWindowEviction(t *testing.T) {
	w := rssi.NewWindow(rssi.DefaultCapacity)
	for i := range 65 {
		w = w.Append(rssi.NewSample(float64(i), epoch.Add(time.Duration(i)*time.Second)))
		require.Equal(t, min(i+1, rssi.DefaultCapacity), w.Len())
	}

	first, ok := w.First()
	require.True(t, ok)
	require.Equal(t, 5.0, first.Value)

	last, ok := w.Last()
	require.True(t, ok)
	require.Equal(t, 64.0, last.Value)

	got := values(w)
	for i, v := range got {
		require.Equal(t, float64(i+5), v)
	}
}

func TestWindowAppendDoesNotMutate(t *testing.T) {
	a := rssi.NewWindow(2).Append(rssi.NewSample(-40, epoch))
	b := a.Append(rssi.NewSample(-50, epoch))
	c := b.Append(rssi.NewSample(-60, epoch))
	d := b.Append(rssi.NewSample(-70, epoch))

	require.Equal(t, []float64{-40}, values(a))
	require.Equal(t, []float64{-40, -50}, values(b))
	require.Equal(t, []float64{-50, -60}, values(c))
	require.Equal(t, []float64{-50, -70}, values(d))

	samples := b.Samples()
	samples[0].Value = 0
	require.Equal(t, []float64{-40, -50}, values(b))
}

func TestWindowEmpty(t *testing.T) {
	w := rssi.NewWindow(3)
	_, ok := w.First()
	require.False(t, ok)
	_, ok = w.Last()
	require.False(t, ok)
	require.Empty(t, w.Samples())
}

func TestSampleLabel(t *testing.T) {
	s := rssi.NewSample(-42, epoch)
	require.Equal(t, "14:03:07", s.Label)
	require.Equal(t, -42.0, s.Value)
	require.True(t, s.Timestamp.Equal(epoch))
}
