package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/api"
	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/config"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Receive chat commands and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	// 1. Validate configuration before connecting to anything
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// 2. Build the application
	app, cleanup, err := initializeApp()
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer cleanup()

	log := app.Logger
	cfg = app.Config

	var webhook http.Handler
	if cfg.BotMode == config.ModeWebhook {
		webhook = app.Bot.WebhookHandler(cfg.WebhookSecret)
	}

	handler, err := api.NewRouter(app.ApiService, api.RouterOptions{
		Logger:         log,
		Metrics:        app.HTTPMetrics,
		TracerProvider: app.Otel.TracerProvider(),
		Webhook:        webhook,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grp, gctx := errgroup.WithContext(ctx)

	// 3. Run the HTTP server
	grp.Go(func() error {
		log.Info("starting http server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			return err
		}
		return nil
	})

	// 4. Receive chat updates
	switch cfg.BotMode {
	case config.ModeWebhook:
		if err := app.Bot.RegisterWebhook(cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
	default:
		grp.Go(func() error {
			return app.Bot.Poll(gctx)
		})
	}

	// 5. Shutdown: stop intake, then let in-flight commands reply
	grp.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown http server", "error", err)
			errs = append(errs, err)
		}
		if err := app.Bot.Wait(shutdownCtx); err != nil {
			log.Error("in-flight commands did not finish", "error", err)
			errs = append(errs, err)
		}

		log.Info("shutdown complete")
		return errors.Join(errs...)
	})

	return grp.Wait()
}
