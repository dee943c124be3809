// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/inteli/rssi-dashboard/internal/wallclock"
)

// Pushes the current snapshot and then every newer one to a WebSocket viewer
// until either side closes.
func (s *Server) serveLive(w http.ResponseWriter, r *http.Request) {
	if !s.join() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.viewers.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		s.log.Debug(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	s.metrics.viewerJoined()
	defer s.metrics.viewerLeft()

	ctx := r.Context()
	viewer := slog.String("viewer", uuid.NewString())
	s.log.Debug(ctx, "viewer connected", viewer)
	defer s.log.Debug(ctx, "viewer disconnected", viewer)

	snapshots, unsubscribe := s.monitor.Subscribe()
	defer unsubscribe()

	// Viewers never send data; reading only surfaces control frames and the
	// closing of the connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := wallclock.Instance.NewTicker(s.options.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return

		case <-s.closing:
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				wallclock.Instance.Now().Add(s.options.WriteTimeout),
			)
			return

		case snap := <-snapshots:
			_ = conn.SetWriteDeadline(
				wallclock.Instance.Now().Add(s.options.WriteTimeout),
			)
			if err := conn.WriteJSON(snap); err != nil {
				s.log.Debug(ctx, "viewer write failed",
					viewer,
					slog.String("error", err.Error()),
				)
				return
			}

		case <-ping.C():
			err := conn.WriteControl(
				websocket.PingMessage,
				nil,
				wallclock.Instance.Now().Add(s.options.WriteTimeout),
			)
			if err != nil {
				return
			}
		}
	}
}
