package tracing

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

const meterName = "chatwoot"

// Metrics records item and request instruments. It implements
// operation.Observer so it can be attached to an executor directly.
type Metrics struct {
	itemsTotal      metric.Int64Counter
	itemDuration    metric.Float64Histogram
	recordsTotal    metric.Int64Counter
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewMetrics creates the instrument set on the given meter provider.
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	meter := meterProvider.Meter(meterName)

	m := &Metrics{}
	var err error

	m.itemsTotal, err = meter.Int64Counter(
		"chatwoot_items_total",
		metric.WithDescription("Total number of processed input items"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	m.itemDuration, err = meter.Float64Histogram(
		"chatwoot_item_duration_seconds",
		metric.WithDescription("Time spent processing one input item"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.recordsTotal, err = meter.Int64Counter(
		"chatwoot_records_total",
		metric.WithDescription("Total number of output records produced"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	m.requestsTotal, err = meter.Int64Counter(
		"chatwoot_requests_total",
		metric.WithDescription("Total number of HTTP requests sent to Chatwoot"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.requestDuration, err = meter.Float64Histogram(
		"chatwoot_request_duration_seconds",
		metric.WithDescription("Latency of HTTP requests sent to Chatwoot"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// ItemCompleted records one item outcome.
func (m *Metrics) ItemCompleted(ctx context.Context, outcome operation.ItemOutcome) {
	attrs := metric.WithAttributes(
		attribute.String("api", string(outcome.API)),
		attribute.String("resource", outcome.Resource),
		attribute.String("operation", outcome.Operation),
		attribute.String("outcome", outcome.Outcome),
	)

	m.itemsTotal.Add(ctx, 1, attrs)
	m.itemDuration.Record(ctx, outcome.Duration.Seconds(), attrs)
	if outcome.Records > 0 {
		m.recordsTotal.Add(ctx, int64(outcome.Records), attrs)
	}
}

// RecordRequest records one HTTP request. A zero status means no response was
// received.
func (m *Metrics) RecordRequest(ctx context.Context, method string, status int, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", statusLabel(status)),
		attribute.String("result", result),
	)

	m.requestsTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
