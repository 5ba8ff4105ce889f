package gateway

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records provider call outcomes.
type Metrics struct {
	callDuration metric.Float64Histogram
	callTotal    metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	callDuration, err := meter.Float64Histogram(
		"awsbot_provider_call_duration_seconds",
		metric.WithDescription("Duration of AWS provider calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	callTotal, err := meter.Int64Counter(
		"awsbot_provider_calls_total",
		metric.WithDescription("Total number of AWS provider calls"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		callDuration: callDuration,
		callTotal:    callTotal,
	}, nil
}

// recordCall is a no-op on a nil receiver.
func (m *Metrics) recordCall(ctx context.Context, op string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	code := ""
	if err != nil {
		status = "error"
		var pe *ProviderError
		if errors.As(err, &pe) {
			code = pe.Code
		}
	}

	attrs := []attribute.KeyValue{
		attribute.String("op", op),
		attribute.String("status", status),
	}
	if code != "" {
		attrs = append(attrs, attribute.String("code", code))
	}

	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.callTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
