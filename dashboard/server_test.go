// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dashboard_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inteli/rssi-dashboard/dashboard"
	"github.com/stretchr/testify/require"
)

func startServer(
	t *testing.T,
	opt ...dashboard.MonitorOption,
) (*dashboard.Monitor, *dashboard.Server, *httptest.Server) {
	t.Helper()
	metrics := dashboard.NewMetrics()
	m := runMonitor(t, append(opt, dashboard.WithMetrics(metrics))...)
	s := dashboard.NewServer(m, dashboard.WithMetrics(metrics))
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return m, s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) *dashboard.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	var snap dashboard.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	return &snap
}

func TestServerHealth(t *testing.T) {
	_, _, ts := startServer(t)

	res, body := get(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", body)

	res, err := http.Post(ts.URL+"/healthz", "text/plain", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestServerIndex(t *testing.T) {
	_, _, ts := startServer(t)

	res, body := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Header.Get("Content-Type"), "text/html")
	require.Contains(t, body, "WiFi Signal Dashboard")
	require.Contains(t, body, "Y_MIN = -100, Y_MAX = -20")

	res, _ = get(t, ts.URL+"/missing")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServerSnapshot(t *testing.T) {
	m, _, ts := startServer(t,
		dashboard.WithBroker("broker.hivemq.com"),
		dashboard.WithTopic("inteli/wifi_signal/rssi"),
	)

	res, body := get(t, ts.URL+"/api/snapshot")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.JSONEq(t, `{
		"sequence": 0,
		"state": "disconnected",
		"status": "Disconnected",
		"connected": false,
		"broker": "broker.hivemq.com",
		"topic": "inteli/wifi_signal/rssi",
		"points": [],
		"latest": null,
		"maximum": null,
		"minimum": null,
		"count": 0,
		"accepted": 0,
		"quality": {"level": 0, "label": "N/A", "color": "#999", "background": "#f5f5f5"}
	}`, body)

	m.Dispatch(context.Background(), sample(-45, 0))
	waitSnapshot(t, m, func(s *dashboard.Snapshot) bool { return s.Count == 1 })

	_, body = get(t, ts.URL+"/api/snapshot")
	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	require.Equal(t, -45.0, snap["latest"])
	require.Equal(t, 1.0, snap["count"])
	require.Equal(t, "Excellent", snap["quality"].(map[string]any)["label"])
	points := snap["points"].([]any)
	require.Len(t, points, 1)
	require.Equal(t, "14:03:07", points[0].(map[string]any)["label"])
}

func TestServerLive(t *testing.T) {
	ctx := context.Background()
	m, _, ts := startServer(t)

	conn := dial(t, ts)
	require.Equal(t, uint64(0), readSnapshot(t, conn).Sequence)

	m.Dispatch(ctx, sample(-61, 0))
	snap := readSnapshot(t, conn)
	require.Equal(t, uint64(1), snap.Sequence)
	require.Equal(t, -61.0, *snap.Latest)

	// A second viewer starts from the current snapshot.
	other := dial(t, ts)
	require.Equal(t, uint64(1), readSnapshot(t, other).Sequence)

	m.Dispatch(ctx, sample(-62, 1))
	require.Equal(t, -62.0, *readSnapshot(t, conn).Latest)
	require.Equal(t, -62.0, *readSnapshot(t, other).Latest)
}

func TestServerCloseDisconnectsViewers(t *testing.T) {
	_, s, ts := startServer(t)

	conn := dial(t, ts)
	readSnapshot(t, conn)

	s.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "%v", err)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestServerMetrics(t *testing.T) {
	m, _, ts := startServer(t)

	m.Dispatch(context.Background(), sample(-70, 0))
	waitSnapshot(t, m, func(s *dashboard.Snapshot) bool { return s.Count == 1 })

	res, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "rssi_dashboard_samples_accepted_total 1")
	require.Contains(t, body, "rssi_dashboard_rssi_latest_dbm -70")
	require.Contains(t, body, "rssi_dashboard_window_points 1")
	require.Contains(t, body, `rssi_dashboard_connection_state{state="disconnected"} 1`)
	require.Contains(t, body, "go_goroutines")
}

func TestServerServe(t *testing.T) {
	m := runMonitor(t)
	s := dashboard.NewServer(m)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	url := "http://" + lis.Addr().String()
	res, body := get(t, url+"/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", body)

	// Without metrics there is no exposition endpoint.
	res, _ = get(t, url+"/metrics")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("server did not shut down")
	}
}
