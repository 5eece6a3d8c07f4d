package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"league-app-go/internal/domain/shared"
	"league-app-go/internal/metrics"
)

// ParseBrokers splits a comma-separated broker list.
func ParseBrokers(value string) []string {
	var brokers []string
	for _, broker := range strings.Split(value, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events to one topic keyed by aggregate id, so every event of
// a relationship or edit request lands on the same partition in order.
type Kafka struct {
	writer messageWriter
	topic  string
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchSize:              100,
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (k *Kafka) Publish(ctx context.Context, events ...shared.Event) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			metrics.EventPublishFailures.WithLabelValues(event.Type).Inc()
			return fmt.Errorf("marshal event %s: %w", event.Type, err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(event.AggregateID),
			Value: data,
			Time:  event.At,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(event.Type)},
				{Key: "actor_id", Value: []byte(event.ActorID)},
			},
		})
	}

	if err := k.writer.WriteMessages(ctx, messages...); err != nil {
		for _, event := range events {
			metrics.EventPublishFailures.WithLabelValues(event.Type).Inc()
		}
		return fmt.Errorf("write to kafka topic %s: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
