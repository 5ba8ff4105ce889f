//go:build wireinject

package main

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/api"
	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/config"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/middleware"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/otel"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/providers"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/telegram"
)

// application struct to hold initialized components
type application struct {
	Ctx         context.Context
	Logger      *slog.Logger
	Config      *config.Config
	Otel        *otel.Provider
	Dispatcher  *commands.Dispatcher
	Bot         *telegram.Bot
	HTTPMetrics *middleware.HTTPMetrics
	ApiService  *api.ApiService
}

// execApplication holds what a one-shot local command needs
type execApplication struct {
	Ctx        context.Context
	Logger     *slog.Logger
	Config     *config.Config
	Dispatcher *commands.Dispatcher
}

var dispatchSet = wire.NewSet(
	providers.ProvideContext,
	providers.ProvideConfig,
	providers.ProvideOtel,
	providers.ProvideLogger,
	providers.ProvideGateway,
	providers.ProvideRegistry,
	providers.ProvideEventPublisher,
	providers.ProvideEventHub,
	providers.ProvideDispatcher,
)

// initializeApp is the injector function
func initializeApp() (*application, func(), error) {
	panic(wire.Build(
		dispatchSet,
		providers.ProvideTelegramBot,
		providers.ProvideHTTPMetrics,
		api.New,
		wire.Struct(new(application), "*"),
	))
}

// initializeExec is the injector for the exec subcommand
func initializeExec() (*execApplication, func(), error) {
	panic(wire.Build(
		dispatchSet,
		wire.Struct(new(execApplication), "*"),
	))
}
