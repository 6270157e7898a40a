package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/playgram-matchroom/internal/delivery/kafka"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
)

type Producer interface {
	PublishMatchReady(ctx context.Context, event kafka.MatchReadyEvent) error
	PublishMatchStarted(ctx context.Context, event kafka.MatchStartedEvent) error
	PublishMatchEnded(ctx context.Context, event kafka.MatchEndedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishMatchReady(ctx context.Context, event kafka.MatchReadyEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicMatchReady, event.MatchID, event)
}

func (p *implProducer) PublishMatchStarted(ctx context.Context, event kafka.MatchStartedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicMatchStarted, event.MatchID, event)
}

func (p *implProducer) PublishMatchEnded(ctx context.Context, event kafka.MatchEndedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicMatchEnded, event.MatchID, event)
}

func (p *implProducer) publish(ctx context.Context, topic, key string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key), // Partition by match_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
