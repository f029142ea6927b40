package events

import (
	"context"

	"github.com/servicehub/service-booking/internal/platform/kafka"
)

// eventSource is the CloudEvents source attribute for everything this service publishes.
const eventSource = "service-booking"

// KafkaPublisher publishes domain events as CloudEvents on Kafka.
type KafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher creates a new KafkaPublisher.
func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish wraps data in a CloudEvent whose subject is key, so all events for one booking
// land on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, eventType, key string, data interface{}) error {
	ce, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		return err
	}
	ce.Subject = key
	return p.producer.PublishEvent(ctx, topic, ce)
}
