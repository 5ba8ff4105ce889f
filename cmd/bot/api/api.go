package api

import (
	"log/slog"

	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/config"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/events"
)

// ApiService serves the HTTP command API over the shared dispatcher.
type ApiService struct {
	Config     *config.Config
	Dispatcher *commands.Dispatcher
	Events     *events.Hub
	Logger     *slog.Logger
}

// New creates a new ApiService
func New(
	config *config.Config,
	dispatcher *commands.Dispatcher,
	hub *events.Hub,
	logger *slog.Logger,
) *ApiService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApiService{
		Config:     config,
		Dispatcher: dispatcher,
		Events:     hub,
		Logger:     logger,
	}
}
