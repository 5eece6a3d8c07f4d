package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/domain/shared"
)

type stubWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublishKeysByAggregate(t *testing.T) {
	writer := &stubWriter{}
	publisher := &Kafka{writer: writer, topic: "league.events"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(),
		shared.Event{Type: "relationship.requested", AggregateID: "rel-1", ActorID: "u1", At: at},
		shared.Event{Type: "relationship.approved", AggregateID: "rel-1", ActorID: "u2", At: at, Data: map[string]any{"kind": "team_player"}},
	)
	require.NoError(t, err)
	require.Len(t, writer.messages, 2)

	msg := writer.messages[1]
	assert.Equal(t, "rel-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, []kafka.Header{
		{Key: "type", Value: []byte("relationship.approved")},
		{Key: "actor_id", Value: []byte("u2")},
	}, msg.Headers)

	var decoded shared.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "relationship.approved", decoded.Type)
	assert.Equal(t, "rel-1", decoded.AggregateID)
	assert.Equal(t, "team_player", decoded.Data["kind"])

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublishReportsWriteFailure(t *testing.T) {
	writer := &stubWriter{err: errors.New("broker unavailable")}
	publisher := &Kafka{writer: writer, topic: "league.events"}

	err := publisher.Publish(context.Background(), shared.Event{Type: "edit_request.created", AggregateID: "er-1"})
	assert.ErrorContains(t, err, "league.events")
	assert.ErrorContains(t, err, "broker unavailable")

	assert.NoError(t, publisher.Publish(context.Background()))
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, ParseBrokers(" kafka-1:9092, ,kafka-2:9092"))
	assert.Empty(t, ParseBrokers(""))
}
