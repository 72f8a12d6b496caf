// Package notifier publishes seat state changes so seat map consumers
// (websocket fan-out, analytics) can react without polling the database.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/segmentio/kafka-go"
)

// KafkaNotifier streams seat change events to a Kafka topic. Messages are
// keyed by show and seat so per-seat ordering is preserved across partitions.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (n *KafkaNotifier) NotifySeatChange(ctx context.Context, event domain.SeatEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding seat event: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d:%s", event.ShowID, event.SeatKey)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publishing seat event: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// NoopNotifier drops events. It stands in when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifySeatChange(context.Context, domain.SeatEvent) error {
	return nil
}
