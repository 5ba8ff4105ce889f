// Package telegram connects the command dispatcher to a Telegram bot, either
// by long polling getUpdates or by receiving webhook calls.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c2h5oh/datasize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
	bototel "github.com/adityagautam-dev/aws-telegram-bot/lib/otel"
)

const defaultPollTimeout = 60

// botAPI is the part of *tgbotapi.BotAPI the transport uses.
type botAPI interface {
	sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options configures a Bot.
type Options struct {
	// MaxUploadSize bounds images and documents sent to chats. Zero disables
	// the check.
	MaxUploadSize datasize.ByteSize
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int
	Logger      *slog.Logger
	Metrics     *bototel.TransportMetrics
}

// Bot feeds chat commands to a dispatcher. Every command runs in its own
// goroutine; Wait blocks until all of them have replied.
type Bot struct {
	api        botAPI
	dispatcher *commands.Dispatcher
	opts       Options
	logger     *slog.Logger
	inflight   sync.WaitGroup
}

// New connects to the Bot API with token.
func New(token string, dispatcher *commands.Dispatcher, opts Options) (*Bot, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if err := tgbotapi.SetLogger(slogBotLogger{log: opts.Logger}); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	opts.Logger.Info("authorized with telegram", "username", api.Self.UserName)

	return newBot(api, dispatcher, opts), nil
}

func newBot(api botAPI, dispatcher *commands.Dispatcher, opts Options) *Bot {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	return &Bot{
		api:        api,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     opts.Logger,
	}
}

// Poll receives updates until ctx is cancelled. Any registered webhook is
// removed first, since Telegram refuses getUpdates while one is set.
func (b *Bot) Poll(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.InfoContext(ctx, "polling for updates", "timeout_s", cfg.Timeout)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update, "polling")
		}
	}
}

// HandleUpdate dispatches the command in update, if any, in a new goroutine.
// The command keeps running after ctx is cancelled so that shutdown never
// cuts a reply short.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update, transport string) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		b.countUpdate(ctx, transport, "ignored")
		return
	}

	req := commands.Request{
		Name: msg.Command(),
		Args: commands.Tokenize(msg.CommandArguments()),
		Sink: &chatSink{
			bot:       b.api,
			chatID:    msg.Chat.ID,
			replyTo:   msg.MessageID,
			maxUpload: b.opts.MaxUploadSize,
		},
	}
	b.countUpdate(ctx, transport, "command")

	runCtx := context.WithoutCancel(ctx)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.ErrorContext(runCtx, "update caused error", "update_id", update.UpdateID, "panic", r)
			}
		}()

		res := b.dispatcher.Dispatch(runCtx, req)
		if res.Err != nil && res.Failure != commands.FailureUsage && res.Failure != commands.FailureUnknown {
			b.logger.WarnContext(runCtx, "update caused error",
				"update_id", update.UpdateID, "chat_id", msg.Chat.ID, "command", req.Name, "error", res.Err)
		}
	}()
}

// Wait blocks until every in-flight command has replied or ctx is done.
func (b *Bot) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight commands: %w", ctx.Err())
	}
}

func (b *Bot) countUpdate(ctx context.Context, transport, outcome string) {
	if b.opts.Metrics == nil {
		return
	}
	b.opts.Metrics.UpdatesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("outcome", outcome),
	))
}
