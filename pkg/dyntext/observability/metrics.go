package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records dyntext metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordProcess records one engine evaluation.
	RecordProcess(ctx context.Context, mode string, total int, duration time.Duration, fallback bool)

	// RecordCycle records a pipeline generation cycle.
	RecordCycle(ctx context.Context, evaluated, cached int, duration time.Duration)

	// RecordCacheHit records a node skipped because its inputs were unchanged.
	RecordCacheHit(ctx context.Context, nodeID string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	processCalls   metric.Int64Counter
	processLatency metric.Float64Histogram
	fallbacks      metric.Int64Counter
	combinations   metric.Int64Histogram
	cycles         metric.Int64Counter
	cycleLatency   metric.Float64Histogram
	cacheHits      metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("dyntext")

	processCalls, err := meter.Int64Counter("dyntext.process.calls",
		metric.WithDescription("Number of template evaluations"),
	)
	if err != nil {
		return nil, err
	}

	processLatency, err := meter.Float64Histogram("dyntext.process.latency_ms",
		metric.WithDescription("Template evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter("dyntext.process.fallbacks",
		metric.WithDescription("Number of evaluations that returned the input unchanged"),
	)
	if err != nil {
		return nil, err
	}

	combinations, err := meter.Int64Histogram("dyntext.process.combinations",
		metric.WithDescription("Number of combinations per evaluated template"),
	)
	if err != nil {
		return nil, err
	}

	cycles, err := meter.Int64Counter("dyntext.cycle.runs",
		metric.WithDescription("Number of pipeline generation cycles"),
	)
	if err != nil {
		return nil, err
	}

	cycleLatency, err := meter.Float64Histogram("dyntext.cycle.latency_ms",
		metric.WithDescription("Generation cycle latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter("dyntext.cache.hits",
		metric.WithDescription("Number of node evaluations skipped on unchanged inputs"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		processCalls:   processCalls,
		processLatency: processLatency,
		fallbacks:      fallbacks,
		combinations:   combinations,
		cycles:         cycles,
		cycleLatency:   cycleLatency,
		cacheHits:      cacheHits,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordProcess records one evaluation.
func (m *otelMetrics) RecordProcess(ctx context.Context, mode string, total int, duration time.Duration, fallback bool) {
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("fallback", fallback),
	)

	m.processCalls.Add(ctx, 1, attrs)
	m.processLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if fallback {
		m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
		return
	}
	m.combinations.Record(ctx, int64(total), metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordCycle records a generation cycle.
func (m *otelMetrics) RecordCycle(ctx context.Context, evaluated, cached int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.Int("evaluated", evaluated),
		attribute.Int("cached", cached),
	)
	m.cycles.Add(ctx, 1, attrs)
	m.cycleLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordCacheHit records a skipped node.
func (m *otelMetrics) RecordCacheHit(ctx context.Context, nodeID string) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("node_id", nodeID)))
}
