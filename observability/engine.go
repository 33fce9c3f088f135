package observability

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric names.
const (
	MetricHandoffs     = "foldkit.fold.handoffs"
	MetricPoolAdmitted = "foldkit.pool.admitted"
	MetricPoolInFlight = "foldkit.pool.in_flight"
	MetricPoolWait     = "foldkit.pool.admission_wait"
	MetricPoolRuns     = "foldkit.pool.runs"
	MetricProductions  = "foldkit.flatten.productions"
)

// EngineMetrics holds the instruments recorded by the folding engine, the
// pool mapper, and the flattening iterator.
type EngineMetrics struct {
	handoffs     metric.Int64Counter
	poolAdmitted metric.Int64Counter
	poolInFlight metric.Int64UpDownCounter
	poolWait     metric.Float64Histogram
	poolRuns     metric.Int64Counter
	productions  metric.Int64Counter
}

// NewEngineMetrics creates the engine instruments on meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	handoffs, err := meter.Int64Counter(MetricHandoffs,
		metric.WithDescription("Folds that continued asynchronously after a pending accumulator"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricHandoffs, err)
	}

	poolAdmitted, err := meter.Int64Counter(MetricPoolAdmitted,
		metric.WithDescription("Mapper calls admitted by the pool"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPoolAdmitted, err)
	}

	poolInFlight, err := meter.Int64UpDownCounter(MetricPoolInFlight,
		metric.WithDescription("Mapper calls currently holding a pool slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricPoolInFlight, err)
	}

	poolWait, err := meter.Float64Histogram(MetricPoolWait,
		metric.WithDescription("Time spent waiting for a pool slot"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricPoolWait, err)
	}

	poolRuns, err := meter.Int64Counter(MetricPoolRuns,
		metric.WithDescription("Completed pool runs by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPoolRuns, err)
	}

	productions, err := meter.Int64Counter(MetricProductions,
		metric.WithDescription("Upstream values flat-mapped by the flattening iterator"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricProductions, err)
	}

	return &EngineMetrics{
		handoffs:     handoffs,
		poolAdmitted: poolAdmitted,
		poolInFlight: poolInFlight,
		poolWait:     poolWait,
		poolRuns:     poolRuns,
		productions:  productions,
	}, nil
}

// RecordHandoff counts a fold over kind that continued asynchronously.
func (m *EngineMetrics) RecordHandoff(ctx context.Context, kind string) {
	m.handoffs.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordAdmit records a mapper call admitted after waiting wait for a slot.
func (m *EngineMetrics) RecordAdmit(ctx context.Context, wait time.Duration) {
	m.poolAdmitted.Add(ctx, 1)
	m.poolInFlight.Add(ctx, 1)
	m.poolWait.Record(ctx, wait.Seconds())
}

// RecordRelease records a pool slot being released.
func (m *EngineMetrics) RecordRelease(ctx context.Context) {
	m.poolInFlight.Add(ctx, -1)
}

// RecordRun records a finished pool run.
func (m *EngineMetrics) RecordRun(ctx context.Context, op, status string) {
	m.poolRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	))
}

// RecordProduction records one flat-mapped upstream value.
func (m *EngineMetrics) RecordProduction(ctx context.Context, async bool) {
	mode := "sync"
	if async {
		mode = "async"
	}
	m.productions.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

var engine atomic.Pointer[EngineMetrics]

// Engine returns the engine instruments, creating them on the global meter
// provider on first use.
func Engine() *EngineMetrics {
	if m := engine.Load(); m != nil {
		return m
	}
	m, err := NewEngineMetrics(Meter())
	if err != nil {
		m, _ = NewEngineMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	engine.CompareAndSwap(nil, m)
	return engine.Load()
}

// SetEngineMetrics replaces the engine instruments. Passing nil makes the
// next Engine call recreate them from the global meter provider.
func SetEngineMetrics(m *EngineMetrics) {
	engine.Store(m)
}
