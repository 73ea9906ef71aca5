package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/AlexandruValeanu/IceBook/pkg/otel"

var (
	engineMetrics     *EngineMetrics
	engineMetricsOnce sync.Once
	meter             = otel.GetMeterProvider().Meter(instrumentationName)
)

// EngineMetrics holds metrics for matching engine operations
type EngineMetrics struct {
	// Orders submitted, by order kind
	submittedOrdersTotal metric.Int64Counter
	// Trades drained and reported
	reportedTradesTotal metric.Int64Counter
	// End-to-end Submit latency
	submitDuration metric.Float64Histogram
}

// GetEngineMetrics returns the EngineMetrics singleton
func GetEngineMetrics() *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = &EngineMetrics{}

		submitted, err := meter.Int64Counter(
			"engine.submitted_orders.total",
			metric.WithDescription("Total number of orders submitted"),
			metric.WithUnit("{order}"),
		)
		if err == nil {
			engineMetrics.submittedOrdersTotal = submitted
		}

		reported, err := meter.Int64Counter(
			"engine.reported_trades.total",
			metric.WithDescription("Total number of trades reported"),
			metric.WithUnit("{trade}"),
		)
		if err == nil {
			engineMetrics.reportedTradesTotal = reported
		}

		duration, err := meter.Float64Histogram(
			"engine.submit.duration",
			metric.WithDescription("Latency (seconds) of order submission"),
			metric.WithUnit("s"),
		)
		if err == nil {
			engineMetrics.submitDuration = duration
		}
	})

	return engineMetrics
}

// RecordSubmit records one order submission and its latency
func (m *EngineMetrics) RecordSubmit(ctx context.Context, orderKind string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("order.kind", orderKind))

	if m.submittedOrdersTotal != nil {
		m.submittedOrdersTotal.Add(ctx, 1, attrs)
	}
	if m.submitDuration != nil {
		m.submitDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// RecordReportedTrades increments the reported trades counter
func (m *EngineMetrics) RecordReportedTrades(ctx context.Context, count int64) {
	if m.reportedTradesTotal == nil {
		return
	}
	m.reportedTradesTotal.Add(ctx, count)
}
