package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Producer publishes activity events to a NATS subject.
type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewProducer(url string, subject string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	nc, err := nats.Connect(url,
		nats.Name("course-portal"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	start := time.Now()
	err := p.publish(event)
	p.metrics.Messaging.RecordPublish(ctx, "nats", event.Type, time.Since(start), err)
	return err
}

func (p *Producer) publish(event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "error", err)
		return err
	}

	// Type goes into the subject so consumers can filter with wildcards.
	subject := p.subject + "." + event.Type
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(events.HeaderType, event.Type)
	msg.Header.Set(events.HeaderKey, event.Key())
	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.Error("failed to send event to NATS", "error", err)
		return err
	}

	p.logger.Debug("event sent to NATS", "subject", subject)
	return nil
}

func (p *Producer) Close() error {
	return p.conn.Drain()
}
