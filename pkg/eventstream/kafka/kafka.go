// Package kafka publishes conversation events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/gistahq/gista/pkg/eventstream"
)

// Publisher writes conversation events to Kafka. Events for the same
// conversation id land on the same partition so consumers see saves in order.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkago.Hash{},
		},
	}
}

// PublishConversation serializes the event and writes it keyed by
// conversation id.
func (p *Publisher) PublishConversation(ctx context.Context, event *eventstream.ConversationSavedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling conversation event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.ConversationID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing conversation event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
