package otel

import (
	"go.opentelemetry.io/otel/metric"
)

// CommandMetrics holds metrics for the command dispatcher.
type CommandMetrics struct {
	DispatchDuration metric.Float64Histogram
	DispatchTotal    metric.Int64Counter
	InFlight         metric.Int64UpDownCounter
	DeliveryFailures metric.Int64Counter
}

// NewCommandMetrics creates metrics for the command dispatcher.
func NewCommandMetrics(meter metric.Meter) (*CommandMetrics, error) {
	dispatchDuration, err := meter.Float64Histogram(
		"awsbot_command_duration_seconds",
		metric.WithDescription("Time from command receipt to final reply"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	dispatchTotal, err := meter.Int64Counter(
		"awsbot_commands_total",
		metric.WithDescription("Total number of dispatched commands by outcome"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"awsbot_commands_in_flight",
		metric.WithDescription("Commands currently being handled"),
	)
	if err != nil {
		return nil, err
	}

	deliveryFailures, err := meter.Int64Counter(
		"awsbot_reply_delivery_failures_total",
		metric.WithDescription("Total number of replies the sink failed to deliver"),
	)
	if err != nil {
		return nil, err
	}

	return &CommandMetrics{
		DispatchDuration: dispatchDuration,
		DispatchTotal:    dispatchTotal,
		InFlight:         inFlight,
		DeliveryFailures: deliveryFailures,
	}, nil
}

// TransportMetrics holds metrics for inbound transports.
type TransportMetrics struct {
	UpdatesTotal metric.Int64Counter
}

// NewTransportMetrics creates metrics for inbound transports.
func NewTransportMetrics(meter metric.Meter) (*TransportMetrics, error) {
	updatesTotal, err := meter.Int64Counter(
		"awsbot_transport_updates_total",
		metric.WithDescription("Total number of inbound updates by transport and outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &TransportMetrics{
		UpdatesTotal: updatesTotal,
	}, nil
}
