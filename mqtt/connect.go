// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/eclipse/paho.golang/paho"
	"github.com/inteli/rssi-dashboard/internal/wallclock"
)

// Runs until ctx is cancelled (returning nil) or a fatal error occurs
// (returning that error).
func (c *SessionClient) manageConnection(ctx context.Context) error {
	for {
		var client *paho.Client
		err := c.options.ConnectionRetry.Start(ctx, "connect",
			func(ctx context.Context) (bool, error) {
				var err error
				client, err = c.connect(ctx)
				return !IsFatal(err), err
			},
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.resubscribe(ctx, client)

		current := c.conn.Current()
		select {
		case <-ctx.Done():
			c.disconnect(ctx, client, current.Attempt)
			return nil
		case <-current.Down.Done():
		}

		if err := c.conn.Current().Error; IsFatal(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-wallclock.Instance.After(c.options.ReconnectPeriod):
		}
	}
}

// Performs a single connection attempt, from dialing to CONNACK.
func (c *SessionClient) connect(ctx context.Context) (*paho.Client, error) {
	attempt := c.conn.Attempt()
	c.notifyConnectionAttempt(attempt)

	connCtx, cancel := context.WithTimeout(ctx, c.options.ConnectionTimeout)
	defer cancel()

	conn, err := c.connectionProvider(connCtx)
	if err != nil {
		var ce *ConnectionError
		if !errors.As(err, &ce) {
			err = &ConnectionError{
				message: "error opening network connection",
				wrapped: err,
			}
		}
		return nil, c.connectFailed(ctx, attempt, err)
	}

	client := paho.NewClient(paho.ClientConfig{
		ClientID:                   c.options.ClientID,
		Conn:                       conn,
		EnableManualAcknowledgment: true,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			func(p paho.PublishReceived) (bool, error) {
				c.onPublishReceived(ctx, p)
				return true, nil
			},
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			c.onServerDisconnect(ctx, attempt, d)
		},
		OnClientError: func(err error) {
			c.onClientError(ctx, attempt, err)
		},
	})

	packet := c.buildConnect()
	c.log.Packet(ctx, "connect", packet)
	connack, err := client.Connect(connCtx, packet)
	c.log.Packet(ctx, "connack", connack)

	switch {
	case connack != nil && connack.ReasonCode >= failureReasonCode:
		if isFatalConnackReasonCode(connack.ReasonCode) {
			err = &FatalConnackError{ReasonCode: connack.ReasonCode}
		} else {
			err = &ConnackError{ReasonCode: connack.ReasonCode}
		}
	case err != nil:
		err = &ConnectionError{
			message: "error establishing MQTT session",
			wrapped: err,
		}
	default:
		err = c.conn.Connect(client)
	}
	if err != nil {
		_ = conn.Close()
		return nil, c.connectFailed(ctx, attempt, err)
	}

	c.log.Info(ctx, "connected",
		slog.String("client_id", c.ID()),
		slog.Uint64("attempt", attempt),
	)
	c.notifyConnect(&ConnectEvent{ReasonCode: connack.ReasonCode})
	return client, nil
}

func (c *SessionClient) connectFailed(
	ctx context.Context,
	attempt uint64,
	err error,
) error {
	c.log.Warn(ctx, "connection attempt failed",
		slog.Uint64("attempt", attempt),
		slog.String("error", err.Error()),
	)
	c.notifyDisconnect(&DisconnectEvent{Error: err})
	return err
}

func (c *SessionClient) buildConnect() *paho.Connect {
	expiry := c.options.SessionExpiry
	return &paho.Connect{
		ClientID:   c.options.ClientID,
		CleanStart: c.options.CleanStart,
		KeepAlive:  c.options.KeepAlive,
		Properties: &paho.ConnectProperties{
			SessionExpiryInterval: &expiry,
			// Without it the server may strip user properties and reason
			// strings from what it sends back.
			RequestProblemInfo: true,
		},
	}
}

func (c *SessionClient) onServerDisconnect(
	ctx context.Context,
	attempt uint64,
	packet *paho.Disconnect,
) {
	c.log.Packet(ctx, "server disconnect", packet)

	reasonCode := packet.ReasonCode
	var err error
	if isFatalDisconnectReasonCode(reasonCode) {
		err = &FatalDisconnectError{ReasonCode: reasonCode}
	} else {
		err = &DisconnectError{ReasonCode: reasonCode}
	}
	c.lost(ctx, attempt, &DisconnectEvent{ReasonCode: &reasonCode, Error: err})
}

func (c *SessionClient) onClientError(
	ctx context.Context,
	attempt uint64,
	err error,
) {
	msg := "connection lost"
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		msg = "server closed the connection"
	}
	c.lost(ctx, attempt, &DisconnectEvent{
		Error: &ConnectionError{message: msg, wrapped: err},
	})
}

// Reports a drop of an established connection; duplicate reports from paho
// for the same connection are ignored.
func (c *SessionClient) lost(
	ctx context.Context,
	attempt uint64,
	event *DisconnectEvent,
) {
	if !c.conn.Disconnect(attempt, event.Error) {
		return
	}
	c.log.Err(ctx, event.Error, slog.Uint64("attempt", attempt))
	c.notifyDisconnect(event)
}

// Sends a normal DISCONNECT when stopping.
func (c *SessionClient) disconnect(
	ctx context.Context,
	client *paho.Client,
	attempt uint64,
) {
	if !c.conn.Disconnect(attempt, &ClientStateError{State: ShutDown}) {
		return
	}

	packet := &paho.Disconnect{ReasonCode: disconnectNormalDisconnection}
	c.log.Packet(ctx, "disconnect", packet)
	if err := client.Disconnect(packet); err != nil {
		c.log.Err(ctx, err)
	}
}
