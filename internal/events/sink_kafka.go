package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ridelink/internal/platform/kafka/producer"
)

// RecordProducer is the subset of the Kafka producer used by KafkaSink.
type RecordProducer interface {
	ProduceAsync(ctx context.Context, msg *producer.Message) error
}

// KafkaSink writes each event as one JSON record keyed by the event key, so
// events of one entity land on one partition in emission order.
type KafkaSink struct {
	producer RecordProducer
	topic    string
}

func NewKafkaSink(p RecordProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return s.producer.ProduceAsync(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Key),
		Value: value,
		Headers: map[string]string{
			"event_type": string(event.Type),
		},
	})
}
