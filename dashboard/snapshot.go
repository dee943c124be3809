// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dashboard

import (
	"time"

	"github.com/inteli/rssi-dashboard/rssi"
)

type (
	// Point is one charted sample.
	Point struct {
		Label     string    `json:"label"`
		Value     float64   `json:"value"`
		Timestamp time.Time `json:"timestamp"`
	}

	// Snapshot is an immutable view of the session handed to renderers.
	// Extremes are nil until the first sample is accepted.
	Snapshot struct {
		Sequence  uint64    `json:"sequence"`
		State     string    `json:"state"`
		Status    string    `json:"status"`
		Connected bool      `json:"connected"`
		Error     string    `json:"error,omitempty"`
		Broker    string    `json:"broker"`
		Topic     string    `json:"topic"`
		Points    []Point   `json:"points"`
		Latest    *float64  `json:"latest"`
		Maximum   *float64  `json:"maximum"`
		Minimum   *float64  `json:"minimum"`
		Count     int       `json:"count"`
		Accepted  uint64    `json:"accepted"`
		Quality   rssi.Band `json:"quality"`
	}
)

func newSnapshot(seq uint64, s rssi.State, broker, topic string) *Snapshot {
	snap := &Snapshot{
		Sequence:  seq,
		State:     s.Connection.String(),
		Status:    s.Connection.StatusText(),
		Connected: s.Connection.IsConnected(),
		Broker:    broker,
		Topic:     topic,
		Points:    make([]Point, 0, s.Window.Len()),
		Latest:    ptr(s.Extremes.Latest()),
		Maximum:   ptr(s.Extremes.Maximum()),
		Minimum:   ptr(s.Extremes.Minimum()),
		Count:     s.Window.Len(),
		Accepted:  s.Accepted,
		Quality:   s.Quality(),
	}
	if s.LastError != nil && s.Connection == rssi.Error {
		snap.Error = s.LastError.Error()
	}
	for _, sample := range s.Window.All() {
		snap.Points = append(snap.Points, Point{
			Label:     sample.Label,
			Value:     sample.Value,
			Timestamp: sample.Timestamp,
		})
	}
	return snap
}

func ptr(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
