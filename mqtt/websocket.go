// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inteli/rssi-dashboard/internal/wallclock"
)

// WebSocketSubprotocol is the subprotocol MQTT servers expect during the
// WebSocket handshake.
const WebSocketSubprotocol = "mqtt"

// WebSocketConnection is a ConnectionProvider that connects to an MQTT server
// over a WebSocket, e.g. "wss://broker.hivemq.com:8884/mqtt". For wss URLs
// the TLS configuration comes from tlsConfigProvider, or the system roots
// if it is nil.
func WebSocketConnection(
	rawURL string,
	tlsConfigProvider TLSConfigProvider,
) ConnectionProvider {
	return func(ctx context.Context) (net.Conn, error) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, &InvalidArgumentError{
				message: "invalid WebSocket URL",
				wrapped: err,
			}
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return nil, &InvalidArgumentError{
				message: "WebSocket URL must use ws or wss, got " + u.Scheme,
			}
		}

		dialer := websocket.Dialer{
			Proxy:        websocket.DefaultDialer.Proxy,
			Subprotocols: []string{WebSocketSubprotocol},
		}
		if u.Scheme == "wss" && tlsConfigProvider != nil {
			dialer.TLSClientConfig, err = tlsConfigProvider(ctx)
			if err != nil {
				return nil, &ConnectionError{
					message: "error getting TLS configuration",
					wrapped: err,
				}
			}
		}

		ws, res, err := dialer.DialContext(ctx, u.String(), nil)
		if res != nil && res.Body != nil {
			_ = res.Body.Close()
		}
		if err != nil {
			return nil, &ConnectionError{
				message: "error opening WebSocket connection",
				wrapped: err,
			}
		}
		return &wsConn{ws: ws}, nil
	}
}

// Presents a WebSocket as a byte stream. Each Write becomes one binary
// message; reads consume messages back to back.
type wsConn struct {
	ws *websocket.Conn

	readMu sync.Mutex
	reader io.Reader

	writeMu sync.Mutex
}

func (c *wsConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for {
		if c.reader == nil {
			typ, r, err := c.ws.NextReader()
			if err != nil {
				return 0, normalizeCloseError(err)
			}
			if typ != websocket.BinaryMessage {
				continue
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if errors.Is(err, io.EOF) {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		wallclock.Instance.Now().Add(time.Second),
	)
	c.writeMu.Unlock()
	return c.ws.Close()
}

func (c *wsConn) LocalAddr() net.Addr {
	return c.ws.LocalAddr()
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *wsConn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.SetWriteDeadline(t)
}

// A clean close from the server is an end of stream to the MQTT reader.
func normalizeCloseError(err error) error {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
	) {
		return io.EOF
	}
	return err
}
