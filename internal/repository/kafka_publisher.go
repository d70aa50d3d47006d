package repository

import (
	"context"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/domain/repository"
)

// Producer publishes a keyed value to a topic; *kafka.Producer satisfies it.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaReportPublisher announces delivered reports on a Kafka topic keyed by owner.
type KafkaReportPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaReportPublisher(producer Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) PublishReport(ctx context.Context, evt models.ReportEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(evt.Owner), evt)
}

var _ repository.EventPublisher = (*KafkaReportPublisher)(nil)
