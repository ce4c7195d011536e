package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

// EventHandler processes one decoded event envelope.
type EventHandler func(ctx context.Context, event events.Envelope) error

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume reads envelopes until the context is cancelled. Handler errors
// are logged, not fatal: a bad message must not stall the group.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Kafka] Error reading message: %v", err)
				continue
			}

			var event events.Envelope
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("[Kafka] Skipping undecodable message: %v", err)
				continue
			}

			if err := handler(ctx, event); err != nil {
				log.Printf("[Kafka] Error handling %s event: %v", event.Type, err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
