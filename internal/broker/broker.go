// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package broker runs an in-process MQTT broker for offline demos and
// integration tests. It accepts every client; there is no authentication.
package broker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

type (
	// Options configures the listeners. An empty address disables that
	// listener; a zero port ("127.0.0.1:0") picks a free one.
	Options struct {
		TCPAddress       string
		WebSocketAddress string
		Logger           *slog.Logger
	}

	// Broker wraps a mochi server with allow-all authentication.
	Broker struct {
		server  *mochi.Server
		tcp     string
		ws      string
		started bool

		closeOnce sync.Once
	}
)

// New configures a broker without starting it.
func New(opts Options) (*Broker, error) {
	if opts.TCPAddress == "" && opts.WebSocketAddress == "" {
		return nil, errors.New("broker needs at least one listener")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       logger,
	})
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, err
	}

	b := &Broker{server: server}

	if opts.TCPAddress != "" {
		addr, err := resolve(opts.TCPAddress)
		if err != nil {
			return nil, err
		}
		b.tcp = addr
		if err := server.AddListener(listeners.NewTCP(listeners.Config{
			Type:    "tcp",
			ID:      "tcp",
			Address: addr,
		})); err != nil {
			return nil, err
		}
	}

	if opts.WebSocketAddress != "" {
		addr, err := resolve(opts.WebSocketAddress)
		if err != nil {
			return nil, err
		}
		b.ws = addr
		if err := server.AddListener(listeners.NewWebsocket(listeners.Config{
			Type:    "ws",
			ID:      "ws",
			Address: addr,
		})); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Serve starts the listeners in the background.
func (b *Broker) Serve() error {
	if err := b.server.Serve(); err != nil {
		return err
	}
	b.started = true
	return nil
}

// Close stops all listeners and disconnects every client. Calls after the
// first return nil.
func (b *Broker) Close() error {
	var err error
	b.closeOnce.Do(func() { err = b.server.Close() })
	return err
}

// TCPAddress returns the resolved host:port of the TCP listener, or "".
func (b *Broker) TCPAddress() string {
	return b.tcp
}

// TCPURL returns an mqtt:// URL for the TCP listener, or "".
func (b *Broker) TCPURL() string {
	if b.tcp == "" {
		return ""
	}
	return "mqtt://" + b.tcp
}

// WebSocketURL returns a ws:// URL for the WebSocket listener, or "".
func (b *Broker) WebSocketURL() string {
	if b.ws == "" {
		return ""
	}
	return "ws://" + b.ws + "/mqtt"
}

// Publish injects a message as if a client had published it.
func (b *Broker) Publish(topic string, payload []byte, retain bool) error {
	if !b.started {
		return errors.New("broker is not serving")
	}
	return b.server.Publish(topic, payload, retain, 0)
}

// Replaces a zero port with a currently free one, so callers can learn the
// address before the listener starts.
func resolve(address string) (string, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "", fmt.Errorf("invalid listener address %q: %w", address, err)
	}
	if port != "0" {
		return address, nil
	}

	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}
