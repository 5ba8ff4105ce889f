package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/config"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/clock"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/events"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/logger"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/middleware"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/otel"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/telegram"
)

const (
	instrumentationName = "github.com/adityagautam-dev/aws-telegram-bot"
	telemetryFlushLimit = 10 * time.Second
)

// ProvideContext provides a base context
func ProvideContext() context.Context {
	return context.Background()
}

// ProvideConfig provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideOtel provides the telemetry pipelines. The cleanup flushes them.
func ProvideOtel(ctx context.Context, cfg *config.Config) (*otel.Provider, func(), error) {
	p, err := otel.Init(ctx, otel.Config{
		Enabled:        cfg.OtelEnabled,
		Endpoint:       cfg.OtelEndpoint,
		ServiceName:    cfg.OtelServiceName,
		ServiceVersion: cfg.Version,
		Insecure:       cfg.OtelInsecure,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init otel: %w", err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushLimit)
		defer cancel()
		if err := p.Shutdown(ctx); err != nil {
			slog.Error("failed to flush telemetry", "error", err)
		}
	}
	return p, cleanup, nil
}

// ProvideLogger provides the process logger and installs it as the default
func ProvideLogger(p *otel.Provider) *slog.Logger {
	log := subsystemLogger(p, logger.SubsystemBot)
	slog.SetDefault(log)
	return log
}

func subsystemLogger(p *otel.Provider, subsystem logger.Subsystem) *slog.Logger {
	return logger.NewSubsystemLogger(subsystem, logger.NewConfig(), p.LogHandler())
}

// ProvideGateway provides the AWS gateway
func ProvideGateway(ctx context.Context, cfg *config.Config, p *otel.Provider) (gateway.Gateway, error) {
	awsCfg, err := gateway.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return gateway.NewAWS(
		gateway.NewClients(awsCfg),
		cfg.SubnetID,
		subsystemLogger(p, logger.SubsystemGateway),
		p.Meter(instrumentationName),
	)
}

// ProvideRegistry provides the command registry
func ProvideRegistry(cfg *config.Config, gw gateway.Gateway) (*commands.Registry, error) {
	return commands.NewDefaultRegistry(&commands.Handlers{
		Gateway:   gw,
		Clock:     clock.Real(),
		ImageID:   cfg.ImageID,
		SubnetID:  cfg.SubnetID,
		SSHUser:   cfg.SSHUser,
		CPUWindow: cfg.CPUWindow,
		CPUPeriod: cfg.CPUPeriod,
	})
}

// ProvideEventPublisher provides the NATS command feed, or nil when
// NATS_URL is unset.
func ProvideEventPublisher(cfg *config.Config, p *otel.Provider) (*events.Publisher, func(), error) {
	if cfg.NatsURL == "" {
		return nil, func() {}, nil
	}

	log := subsystemLogger(p, logger.SubsystemEvents)
	pub, err := events.NewPublisher(cfg.NatsURL, log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Error("failed to drain nats connection", "error", err)
		}
	}
	return pub, cleanup, nil
}

// ProvideEventHub provides the in-process command feed
func ProvideEventHub(p *otel.Provider) *events.Hub {
	return events.NewHub(events.DefaultSubscriberBuffer, subsystemLogger(p, logger.SubsystemEvents))
}

// ProvideDispatcher provides the command dispatcher
func ProvideDispatcher(
	cfg *config.Config,
	registry *commands.Registry,
	log *slog.Logger,
	p *otel.Provider,
	pub *events.Publisher,
	hub *events.Hub,
) (*commands.Dispatcher, error) {
	metrics, err := otel.NewCommandMetrics(p.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("create command metrics: %w", err)
	}

	opts := []commands.Option{
		commands.WithLogger(log),
		commands.WithTimeout(cfg.ProviderTimeout),
		commands.WithMetrics(metrics),
		commands.WithTracer(p.Tracer(instrumentationName)),
		commands.WithObserver(hub),
	}
	if pub != nil {
		opts = append(opts, commands.WithObserver(pub))
	}
	return commands.NewDispatcher(registry, opts...), nil
}

// ProvideTelegramBot provides the Telegram transport
func ProvideTelegramBot(cfg *config.Config, dispatcher *commands.Dispatcher, p *otel.Provider) (*telegram.Bot, error) {
	metrics, err := otel.NewTransportMetrics(p.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("create transport metrics: %w", err)
	}

	return telegram.New(cfg.TelegramToken, dispatcher, telegram.Options{
		MaxUploadSize: cfg.MaxUploadSize,
		Logger:        subsystemLogger(p, logger.SubsystemTelegram),
		Metrics:       metrics,
	})
}

// ProvideHTTPMetrics provides the HTTP request instruments
func ProvideHTTPMetrics(p *otel.Provider) (*middleware.HTTPMetrics, error) {
	return middleware.NewHTTPMetrics(p.Meter(instrumentationName))
}
