package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MessagingMetrics tracks activity events handed to the configured broker.
type MessagingMetrics struct {
	published metric.Int64Counter
	failed    metric.Int64Counter
	latency   metric.Float64Histogram
}

func NewMessagingMetrics(meter metric.Meter) (*MessagingMetrics, error) {
	published, err := meter.Int64Counter(
		"portal.events.published",
		metric.WithDescription("Activity events handed to the broker"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter(
		"portal.events.failed",
		metric.WithDescription("Activity events the broker rejected or never acknowledged"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	// 100µs .. 2.5s; kafka with acks=all sits near the top on a slow cluster
	latency, err := meter.Float64Histogram(
		"portal.events.publish_latency",
		metric.WithDescription("Time until the broker accepted an activity event"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5),
	)
	if err != nil {
		return nil, err
	}

	return &MessagingMetrics{published: published, failed: failed, latency: latency}, nil
}

// RecordPublish is keyed by driver ("nats", "kafka") and event type, never by error text.
func (mm *MessagingMetrics) RecordPublish(ctx context.Context, driver, eventType string, duration time.Duration, err error) {
	if mm == nil || mm.published == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("driver", driver),
		attribute.String("event.type", eventType),
	)

	mm.latency.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		mm.failed.Add(ctx, 1, attrs)
		return
	}
	mm.published.Add(ctx, 1, attrs)
}
