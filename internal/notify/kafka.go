// Package notify publishes day-updated signals so dashboards and caches
// can refresh after a merge lands.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topic carries day-updated events.
const Topic = "health_day_updated"

// DayUpdatedEvent is the wire payload published after a merge-upsert.
type DayUpdatedEvent struct {
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// writer is the kafka.Writer surface used by the publisher.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier implements domain.Notifier on a Kafka topic. Messages key
// on the user so one user's updates stay ordered within a partition.
type KafkaNotifier struct {
	writer writer
}

// NewKafkaNotifier constructs a notifier writing to the day-updated topic.
func NewKafkaNotifier(brokers []string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// DayUpdated publishes one event for the (user, date) that changed.
func (n *KafkaNotifier) DayUpdated(ctx context.Context, userID, date string) error {
	payload, err := json.Marshal(DayUpdatedEvent{
		UserID:     userID,
		Date:       date,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(userID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("health.day_updated")},
		},
	})
}

// Close releases the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
