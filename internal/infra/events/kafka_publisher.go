package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"payment-relay/internal/domain/ports/adapter"
	"payment-relay/internal/infra/logging"
)

var _ adapter.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaProducer builds a synchronous producer that waits for all in-sync
// replicas. Sends are not retried.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 0

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

// KafkaPublisher writes payment events as JSON, keyed by order id so events
// for one order stay on one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zerolog.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *zerolog.Logger) *KafkaPublisher {
	l := logger.With().Str("component", "KafkaPublisher").Str("topic", topic).Logger()
	return &KafkaPublisher{producer: producer, topic: topic, logger: &l}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev adapter.PaymentEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := []sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(ev.Type)}}
	if id := logging.TraceID(ctx); id != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("trace_id"), Value: []byte(id)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(ev.OrderID),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	logging.With(ctx, p.logger).Info().
		Str("event_id", ev.ID).
		Str("event_type", ev.Type).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("payment event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
