// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package broker_test

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/inteli/rssi-dashboard/internal/broker"
	"github.com/stretchr/testify/require"
)

func TestBrokerListens(t *testing.T) {
	b, err := broker.New(broker.Options{
		TCPAddress:       "127.0.0.1:0",
		WebSocketAddress: "127.0.0.1:0",
	})
	require.NoError(t, err)
	require.NoError(t, b.Serve())
	t.Cleanup(func() { _ = b.Close() })

	require.True(t, strings.HasPrefix(b.TCPURL(), "mqtt://127.0.0.1:"))
	require.True(t, strings.HasPrefix(b.WebSocketURL(), "ws://127.0.0.1:"))
	require.True(t, strings.HasSuffix(b.WebSocketURL(), "/mqtt"))

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", b.TCPAddress())
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 5*time.Second, 10*time.Millisecond)
}

func TestBrokerNeedsListener(t *testing.T) {
	_, err := broker.New(broker.Options{})
	require.Error(t, err)
}

func TestBrokerPublishBeforeServe(t *testing.T) {
	b, err := broker.New(broker.Options{TCPAddress: "127.0.0.1:0"})
	require.NoError(t, err)
	require.Error(t, b.Publish("a/b", []byte("x"), false))
}

func TestBrokerCloseTwice(t *testing.T) {
	b, err := broker.New(broker.Options{TCPAddress: "127.0.0.1:0"})
	require.NoError(t, err)
	require.NoError(t, b.Serve())

	require.NoError(t, b.Close())
	require.NotPanics(t, func() {
		require.NoError(t, b.Close())
	})
}
