// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import "github.com/eclipse/paho.golang/paho"

func buildMessage(packet *paho.Publish, ack func()) *Message {
	msg := &Message{
		Topic:   packet.Topic,
		Payload: packet.Payload,
		PublishOptions: PublishOptions{
			QoS:    packet.QoS,
			Retain: packet.Retain,
		},
		Ack: ack,
	}

	if p := packet.Properties; p != nil {
		msg.ContentType = p.ContentType
		if p.PayloadFormat != nil {
			msg.PayloadFormat = *p.PayloadFormat
		}
		if p.MessageExpiry != nil {
			msg.MessageExpiry = *p.MessageExpiry
		}
		if len(p.User) > 0 {
			msg.UserProperties = make(map[string]string, len(p.User))
			for _, u := range p.User {
				msg.UserProperties[u.Key] = u.Value
			}
		}
	}
	return msg
}

func userProperties(props map[string]string) paho.UserProperties {
	if len(props) == 0 {
		return nil
	}
	user := make(paho.UserProperties, 0, len(props))
	for key, value := range props {
		user = append(user, paho.UserProperty{Key: key, Value: value})
	}
	return user
}

// Reason strings live in a different properties struct for each ack type.
func ackError(packet string, code byte, props any) error {
	err := &AckError{Packet: packet, ReasonCode: code}
	switch p := props.(type) {
	case *paho.SubackProperties:
		if p != nil {
			err.ReasonString = p.ReasonString
		}
	case *paho.UnsubackProperties:
		if p != nil {
			err.ReasonString = p.ReasonString
		}
	case *paho.PublishResponseProperties:
		if p != nil {
			err.ReasonString = p.ReasonString
		}
	}
	return err
}
