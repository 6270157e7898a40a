package kafka

import (
	"fmt"
	"log"

	"github.com/IBM/sarama"
)

const clientID = "playgram-matchroom"

type ProducerConfig struct {
	Brokers      []string
	RetryMax     int
	RequiredAcks int
}

// NewProducer builds the synchronous producer carrying match lifecycle events.
// Publishes confirm delivery before a match is reaped, so successes must be
// returned.
func NewProducer(cfg ProducerConfig) (sarama.SyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = clientID
	saramaCfg.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	saramaCfg.Producer.Retry.Max = cfg.RetryMax
	saramaCfg.Producer.Return.Successes = true

	prod, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Printf("Kafka producer connected to brokers: %v\n", cfg.Brokers)

	return prod, nil
}
