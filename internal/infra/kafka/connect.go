package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-waitlist/config"
	pkgKafka "github.com/vogiaan1904/ticketbottle-waitlist/pkg/kafka"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

const clientID = "ticketbottle-waitlist"

func ConnectProducer(ctx context.Context, cfg config.KafkaConfig, l logger.Logger) (sarama.SyncProducer, error) {
	prod, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
		Brokers:      cfg.Brokers,
		ClientID:     clientID,
		RetryMax:     cfg.ProducerRetryMax,
		RequiredAcks: cfg.ProducerRequiredAcks,
	})
	if err != nil {
		return nil, err
	}

	l.Infof(ctx, "Kafka producer connected to brokers: %v", cfg.Brokers)
	return prod, nil
}

func ConnectConsumer(ctx context.Context, cfg config.KafkaConfig, l logger.Logger) (sarama.ConsumerGroup, error) {
	consGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.ConsumerGroupID,
		ClientID: clientID,
	})
	if err != nil {
		return nil, err
	}

	l.Infof(ctx, "Kafka consumer connected to brokers: %v, group: %s", cfg.Brokers, cfg.ConsumerGroupID)
	return consGr, nil
}
