package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestDayUpdatedMessageShape(t *testing.T) {
	stub := &stubWriter{}
	notifier := &KafkaNotifier{writer: stub}

	err := notifier.DayUpdated(context.Background(), "user-1", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, stub.messages, 1)

	msg := stub.messages[0]
	require.Equal(t, []byte("user-1"), msg.Key)
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, []byte("health.day_updated"), msg.Headers[0].Value)

	var event DayUpdatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	require.Equal(t, "user-1", event.UserID)
	require.Equal(t, "2024-03-01", event.Date)
	require.False(t, event.OccurredAt.IsZero())
}

type stubWriter struct {
	messages []kafka.Message
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }
