package repository

import (
	"context"

	"CostCast/internal/domain/models"
	domrepo "CostCast/internal/domain/repository"
	pkgkafka "CostCast/pkg/kafka"
)

// KafkaPublisher pushes observations to the costs topic and run events
// to the events topic.
type KafkaPublisher struct {
	producer    *pkgkafka.Producer
	topic       string
	eventsTopic string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic, eventsTopic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic, eventsTopic: eventsTopic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, o *models.CostObservation) error {
	return p.producer.Publish(ctx, p.topic, []byte(o.Account), o)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, obs []*models.CostObservation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(o.Account),
			Value: o,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) PublishRunCompleted(ctx context.Context, ev *models.RunCompletedEvent) error {
	return p.producer.Publish(ctx, p.eventsTopic, []byte(ev.Account), ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
