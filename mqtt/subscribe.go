// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"log/slog"
	"sync"

	"github.com/eclipse/paho.golang/paho"
)

type subscription struct {
	client  *SessionClient
	filter  string
	handler MessageHandler
	options SubscribeOptions
	remove  func()
}

// Subscribe registers handler for messages matching topic and sends a
// SUBSCRIBE to the server. The subscription is re-sent after every
// reconnection until it is removed with Unsubscribe. If the client is not
// connected, Subscribe returns immediately and the SUBSCRIBE is sent once the
// connection comes up.
//
// Handlers must call Message.Ack once they are done with a message.
func (c *SessionClient) Subscribe(
	ctx context.Context,
	topic string,
	handler MessageHandler,
	opts ...SubscribeOption,
) (Subscription, error) {
	if err := c.ensureStarted(); err != nil {
		return nil, err
	}
	if !validTopicFilter(topic) {
		return nil, &InvalidArgumentError{message: "invalid topic filter " + topic}
	}
	if handler == nil {
		return nil, &InvalidArgumentError{message: "message handler is nil"}
	}

	sub := &subscription{client: c, filter: topic, handler: handler}
	sub.options.Apply(opts)
	if sub.options.QoS > 1 {
		return nil, &InvalidArgumentError{message: "QoS 2 is not supported"}
	}
	sub.remove = c.subscriptions.Add(sub)

	current := c.conn.Current()
	if current.Client == nil {
		return sub, nil
	}

	connCtx, cancel := current.Down.With(ctx)
	defer cancel()
	if err := c.subscribe(connCtx, current.Client, sub); err != nil {
		// A dropped connection is not a failure; the SUBSCRIBE goes out again
		// once reconnected.
		if connCtx.Err() != nil && ctx.Err() == nil {
			return sub, nil
		}
		sub.remove()
		return nil, err
	}
	return sub, nil
}

func (s *subscription) Topic() string {
	return s.filter
}

// Unsubscribe removes the handler and, if no other subscription uses the same
// filter, sends an UNSUBSCRIBE to the server.
func (s *subscription) Unsubscribe(ctx context.Context) error {
	s.remove()

	for other := range s.client.subscriptions.All() {
		if other.filter == s.filter {
			return nil
		}
	}

	current := s.client.conn.Current()
	if current.Client == nil {
		return nil
	}

	connCtx, cancel := current.Down.With(ctx)
	defer cancel()

	packet := &paho.Unsubscribe{Topics: []string{s.filter}}
	s.client.log.Packet(ctx, "unsubscribe", packet)
	unsuback, err := current.Client.Unsubscribe(connCtx, packet)
	s.client.log.Packet(ctx, "unsuback", unsuback)
	if unsuback != nil && len(unsuback.Reasons) > 0 &&
		unsuback.Reasons[0] >= failureReasonCode {
		return ackError("UNSUBSCRIBE", unsuback.Reasons[0], unsuback.Properties)
	}
	if err != nil && connCtx.Err() == nil {
		return err
	}
	return nil
}

func (c *SessionClient) subscribe(
	ctx context.Context,
	client *paho.Client,
	sub *subscription,
) error {
	packet := &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{
			Topic:   sub.filter,
			QoS:     sub.options.QoS,
			NoLocal: sub.options.NoLocal,
		}},
	}
	if len(sub.options.UserProperties) > 0 {
		packet.Properties = &paho.SubscribeProperties{
			User: userProperties(sub.options.UserProperties),
		}
	}

	c.log.Packet(ctx, "subscribe", packet)
	suback, err := client.Subscribe(ctx, packet)
	c.log.Packet(ctx, "suback", suback)

	if suback != nil && len(suback.Reasons) > 0 && suback.Reasons[0] >= failureReasonCode {
		return ackError("SUBSCRIBE", suback.Reasons[0], suback.Properties)
	}
	return err
}

// Restores every registered subscription on a fresh connection.
func (c *SessionClient) resubscribe(ctx context.Context, client *paho.Client) {
	for sub := range c.subscriptions.All() {
		if err := c.subscribe(ctx, client, sub); err != nil {
			c.log.Err(ctx, err, slog.String("topic", sub.filter))
		}
	}
}

func (c *SessionClient) onPublishReceived(
	ctx context.Context,
	received paho.PublishReceived,
) {
	packet := received.Packet
	c.log.Packet(ctx, "publish received", packet)

	ack := sync.OnceFunc(func() {
		if err := received.Client.Ack(packet); err != nil {
			c.log.Err(ctx, err, slog.String("topic", packet.Topic))
		}
	})
	msg := buildMessage(packet, ack)

	var handled bool
	for sub := range c.subscriptions.All() {
		if IsTopicFilterMatch(sub.filter, packet.Topic) {
			handled = true
			sub.handler(ctx, msg)
		}
	}

	// Nobody will ever ack this one, so don't hold up the ones behind it.
	if !handled {
		ack()
	}
}
