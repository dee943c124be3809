// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/inteli/rssi-dashboard/mqtt"
)

// In-memory client that delivers publishes to exact-topic subscribers.
type stubClient struct {
	id string

	mu        sync.Mutex
	subs      map[string]map[*stubSubscription]mqtt.MessageHandler
	published []*mqtt.Message
	acks      atomic.Int64
}

type stubSubscription struct {
	client *stubClient
	topic  string
}

func newStubClient(id string) *stubClient {
	return &stubClient{
		id:   id,
		subs: map[string]map[*stubSubscription]mqtt.MessageHandler{},
	}
}

func (c *stubClient) ID() string {
	return c.id
}

func (c *stubClient) Publish(
	_ context.Context,
	topic string,
	payload []byte,
	opts ...mqtt.PublishOption,
) error {
	var o mqtt.PublishOptions
	o.Apply(opts)

	c.mu.Lock()
	c.published = append(c.published, &mqtt.Message{
		Topic:          topic,
		Payload:        payload,
		PublishOptions: o,
	})
	handlers := make([]mqtt.MessageHandler, 0, len(c.subs[topic]))
	for _, h := range c.subs[topic] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(context.Background(), &mqtt.Message{
			Topic:          topic,
			Payload:        payload,
			PublishOptions: o,
			Ack:            func() { c.acks.Add(1) },
		})
	}
	return nil
}

func (c *stubClient) Subscribe(
	_ context.Context,
	topic string,
	handler mqtt.MessageHandler,
	_ ...mqtt.SubscribeOption,
) (mqtt.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &stubSubscription{client: c, topic: topic}
	if c.subs[topic] == nil {
		c.subs[topic] = map[*stubSubscription]mqtt.MessageHandler{}
	}
	c.subs[topic][sub] = handler
	return sub, nil
}

func (c *stubClient) subscribers(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs[topic])
}

func (c *stubClient) last() *mqtt.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.published) == 0 {
		return nil
	}
	return c.published[len(c.published)-1]
}

func (s *stubSubscription) Topic() string {
	return s.topic
}

func (s *stubSubscription) Unsubscribe(context.Context) error {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	delete(s.client.subs[s.topic], s)
	return nil
}
