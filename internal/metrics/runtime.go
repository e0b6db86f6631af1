package metrics

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics observes the Go runtime once per collection cycle.
type RuntimeMetrics struct {
	started time.Time
}

type runtimeGauge struct {
	name, desc, unit string
	read             func(*runtime.MemStats) int64
}

var runtimeGauges = []runtimeGauge{
	{"go.goroutine.count", "Live goroutines", "{goroutine}", func(*runtime.MemStats) int64 { return int64(runtime.NumGoroutine()) }},
	{"go.memory.heap_alloc", "Bytes of allocated heap objects", "By", func(m *runtime.MemStats) int64 { return int64(m.HeapAlloc) }},
	{"go.memory.heap_objects", "Allocated heap objects", "{object}", func(m *runtime.MemStats) int64 { return int64(m.HeapObjects) }},
	{"go.gc.cycles", "Completed GC cycles", "{cycle}", func(m *runtime.MemStats) int64 { return int64(m.NumGC) }},
}

func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{started: time.Now()}

	gauges := make([]metric.Int64ObservableGauge, len(runtimeGauges))
	observables := make([]metric.Observable, 0, len(runtimeGauges)+1)
	for i, g := range runtimeGauges {
		gauge, err := meter.Int64ObservableGauge(g.name, metric.WithDescription(g.desc), metric.WithUnit(g.unit))
		if err != nil {
			return nil, err
		}
		gauges[i] = gauge
		observables = append(observables, gauge)
	}

	uptime, err := meter.Float64ObservableCounter(
		"portal.uptime",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	observables = append(observables, uptime)

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		for i, g := range runtimeGauges {
			o.ObserveInt64(gauges[i], g.read(&mem))
		}
		o.ObserveFloat64(uptime, time.Since(rm.started).Seconds())
		return nil
	}, observables...)
	if err != nil {
		return nil, err
	}

	return rm, nil
}
