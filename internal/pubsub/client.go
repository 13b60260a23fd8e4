package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New connects to GCP Pub/Sub for the given project. The process exits when
// the client cannot be created; the live feed is useless without it.
func New(projectID string) PubSubClient {
	pubSubC, err := pubsub.NewClient(context.Background(), projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}
	return &client{
		client:   pubSubC,
		teardown: func() { pubSubC.Close() },
	}
}

// SendMessage publishes one msgpack-encoded message and blocks until the
// server acknowledges it, bounded by ctx.
func (c *client) SendMessage(ctx context.Context, topic string, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("Failed to encode message", "error", err, "topic", topic)
		return err
	}
	result := c.client.Topic(topic).Publish(ctx, &pubsub.Message{Data: payload})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("Published message", "serverID", serverID, "topic", topic)
	return nil
}

// ProcessMessage decodes a msgpack payload into the provided pointer.
func (c *client) ProcessMessage(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("Failed to decode message", "error", err)
		return err
	}
	return nil
}
