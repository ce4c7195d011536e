package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

// Publisher is what the API services depend on. Publishing is best-effort
// on the request path: callers log failures instead of surfacing them.
type Publisher interface {
	Publish(ctx context.Context, key string, event events.Envelope) error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, key string, event events.Envelope) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  event.OccurredAt,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
