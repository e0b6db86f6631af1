package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/IBM/sarama"
)

// Producer publishes activity events to a Kafka topic, keyed by event type and course.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "course-portal"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return config
}

func NewProducer(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return NewWithSyncProducer(producer, topic, logger, m), nil
}

// NewWithSyncProducer wraps an existing sarama producer (tests pass sarama's mocks).
func NewWithSyncProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger, m *metrics.Metrics) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

// Publish returns ctx.Err() once ctx is done. The send keeps running in the
// background until sarama gives up on its retries.
func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- p.send(event) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
		p.logger.Warn("kafka send still pending at deadline", "type", event.Type, "error", err)
	}

	p.metrics.Messaging.RecordPublish(ctx, "kafka", event.Type, time.Since(start), err)
	return err
}

func (p *Producer) send(event events.Event) error {
	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(valueBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte(events.HeaderType), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to send event to kafka", "error", err)
		return err
	}

	p.logger.Debug("event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "key", event.Key())
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
