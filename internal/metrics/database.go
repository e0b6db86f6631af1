package metrics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DatabaseMetrics covers the bun connection pool and per-repository query timing.
type DatabaseMetrics struct {
	duration metric.Float64Histogram
	failures metric.Int64Counter
}

type poolGauge struct {
	name, desc string
	read       func(sql.DBStats) int64
}

var poolGauges = []poolGauge{
	{"db.pool.open", "Open connections", func(s sql.DBStats) int64 { return int64(s.OpenConnections) }},
	{"db.pool.idle", "Idle connections", func(s sql.DBStats) int64 { return int64(s.Idle) }},
	{"db.pool.in_use", "Connections serving a query", func(s sql.DBStats) int64 { return int64(s.InUse) }},
	{"db.pool.max_open", "Configured connection ceiling", func(s sql.DBStats) int64 { return int64(s.MaxOpenConnections) }},
	{"db.pool.wait_count", "Requests that waited for a free connection", func(s sql.DBStats) int64 { return s.WaitCount }},
}

func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	// 1ms .. 5s
	duration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Repository query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"db.query.failures",
		metric.WithDescription("Repository queries that returned an error other than no rows"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	return &DatabaseMetrics{duration: duration, failures: failures}, nil
}

// RegisterDB reports pool statistics of db on every collection.
func (dm *DatabaseMetrics) RegisterDB(db *sql.DB, meter metric.Meter) error {
	gauges := make([]metric.Int64ObservableGauge, len(poolGauges))
	observables := make([]metric.Observable, len(poolGauges))
	for i, g := range poolGauges {
		gauge, err := meter.Int64ObservableGauge(g.name, metric.WithDescription(g.desc), metric.WithUnit("{connection}"))
		if err != nil {
			return err
		}
		gauges[i] = gauge
		observables[i] = gauge
	}

	_, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		for i, g := range poolGauges {
			o.ObserveInt64(gauges[i], g.read(stats))
		}
		return nil
	}, observables...)
	return err
}

// RecordQuery is safe to call on a zero or nil DatabaseMetrics.
// A lookup that finds nothing is timed but not counted as a failure.
func (dm *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if dm == nil || dm.duration == nil {
		return
	}

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		outcome = "no_rows"
	default:
		outcome = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.table", table),
		attribute.String("outcome", outcome),
	)

	dm.duration.Record(ctx, duration.Seconds(), attrs)
	if outcome == "error" {
		dm.failures.Add(ctx, 1, attrs)
	}
}
