package events

import (
	"context"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer is what the outbox publisher needs from a broker.
type Producer interface {
	Publish(ctx context.Context, key, eventType string, value []byte) error
}

// KafkaProducer writes registry events to one topic.
type KafkaProducer struct {
	writer *kafkago.Writer
}

func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("brokers list is empty")
	}
	if topic == "" {
		return nil, errors.New("topic is empty")
	}
	return &KafkaProducer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
		},
	}, nil
}

// Publish keys messages by aggregate id, the GTIN or the product file id, so
// every change of one aggregate lands on the same partition in order.
func (p *KafkaProducer) Publish(ctx context.Context, key, eventType string, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
