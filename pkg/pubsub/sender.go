package pubsub

import (
	"context"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// OrdersSender publishes serialized outbox payloads to the orders topic.
type OrdersSender struct {
	publisher *pubsub.Publisher
}

// NewOrdersSender wraps the client's orders publisher handle.
func NewOrdersSender(client *Client) (*OrdersSender, error) {
	publisher := client.OrdersPublisher()
	if publisher == nil {
		return nil, errors.New("orders topic is not configured")
	}
	return &OrdersSender{publisher: publisher}, nil
}

// Send publishes the payload and blocks until the broker acknowledges it.
func (s *OrdersSender) Send(ctx context.Context, eventType string, payload []byte, attributes map[string]string) error {
	msg := &pubsub.Message{
		Data:       payload,
		Attributes: attributes,
	}
	result := s.publisher.Publish(ctx, msg)
	_, err := result.Get(ctx)
	return err
}
