package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// MQTTPublisher publishes raw payloads; implemented by platform/mqtt.Client.
type MQTTPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// MQTTSink pushes events to devices on <prefix>/events/<type>/<key>. A client
// subscribed to <prefix>/events/+/<handle> receives everything addressed to it.
type MQTTSink struct {
	client MQTTPublisher
	prefix string
}

func NewMQTTSink(client MQTTPublisher, prefix string) *MQTTSink {
	return &MQTTSink{client: client, prefix: prefix}
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) Topic(event Event) string {
	return fmt.Sprintf("%s/events/%s/%s", s.prefix, event.Type, event.Key)
}

func (s *MQTTSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return s.client.Publish(ctx, s.Topic(event), payload)
}
