// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"

	"github.com/eclipse/paho.golang/paho"
)

// Publish sends a PUBLISH to the server. If the client is not connected, it
// waits for the connection to come up, and if the connection drops before
// the publish completes, it is sent again after reconnecting. It gives up
// when ctx is done or the client shuts down.
func (c *SessionClient) Publish(
	ctx context.Context,
	topic string,
	payload []byte,
	opts ...PublishOption,
) error {
	if err := c.ensureStarted(); err != nil {
		return err
	}
	if !validTopicName(topic) {
		return &InvalidArgumentError{message: "invalid topic name " + topic}
	}

	var options PublishOptions
	options.Apply(opts)
	if options.QoS > 1 {
		return &InvalidArgumentError{message: "QoS 2 is not supported"}
	}
	if options.PayloadFormat > 1 {
		return &InvalidArgumentError{message: "invalid payload format indicator"}
	}

	packet := buildPublish(topic, payload, &options)

	ctx, cancel := c.shutdown.With(ctx)
	defer cancel()

	for connCtx, client := range c.conn.Client(ctx) {
		c.log.Packet(ctx, "publish", packet)
		res, err := client.Publish(connCtx, packet)
		c.log.Packet(ctx, "puback", res)

		if res != nil && res.ReasonCode >= failureReasonCode {
			return ackError("PUBLISH", res.ReasonCode, res.Properties)
		}
		if err == nil {
			return nil
		}
		if connCtx.Err() == nil || ctx.Err() != nil {
			return err
		}
		// Connection dropped mid-publish; try again on the next one.
	}
	return context.Cause(ctx)
}

func buildPublish(
	topic string,
	payload []byte,
	options *PublishOptions,
) *paho.Publish {
	packet := &paho.Publish{
		QoS:     options.QoS,
		Retain:  options.Retain,
		Topic:   topic,
		Payload: payload,
		Properties: &paho.PublishProperties{
			ContentType: options.ContentType,
			User:        userProperties(options.UserProperties),
		},
	}
	if options.PayloadFormat != 0 {
		format := options.PayloadFormat
		packet.Properties.PayloadFormat = &format
	}
	if options.MessageExpiry != 0 {
		expiry := options.MessageExpiry
		packet.Properties.MessageExpiry = &expiry
	}
	return packet
}
