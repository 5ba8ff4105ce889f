// Package events publishes a record of every dispatched command to NATS.
// Arguments are never published.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
)

// SubjectPrefix is prepended to the command name.
const SubjectPrefix = "awsbot.commands."

// CommandEvent is the published payload.
type CommandEvent struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	State      string    `json:"state"`
	Failure    string    `json:"failure"`
	Delivered  int       `json:"delivered"`
	DurationMS int64     `json:"duration_ms"`
	Time       time.Time `json:"time"`
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	IsClosed() bool
}

// Publisher sends CommandEvents. A nil *Publisher discards events.
type Publisher struct {
	nc     conn
	logger *slog.Logger
	now    func() time.Time
}

var _ commands.Observer = (*Publisher)(nil)

// NewPublisher connects to url and keeps reconnecting in the background.
func NewPublisher(url string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []nats.Option{
		nats.Name("awsbot"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return newPublisher(nc, logger), nil
}

func newPublisher(nc conn, logger *slog.Logger) *Publisher {
	return &Publisher{nc: nc, logger: logger, now: time.Now}
}

// Subject returns the subject a command's events go to.
func Subject(command string) string {
	if command == "" {
		command = "unknown"
	}
	return SubjectPrefix + command
}

// NewCommandEvent builds the payload for a dispatch result.
func NewCommandEvent(res commands.Result, at time.Time) CommandEvent {
	return CommandEvent{
		ID:         res.ID,
		Command:    res.Command,
		State:      res.State.String(),
		Failure:    res.Failure.String(),
		Delivered:  res.Delivered,
		DurationMS: res.Duration.Milliseconds(),
		Time:       at.UTC(),
	}
}

// CommandDispatched publishes res. Failures are logged and dropped so a
// broker outage never affects chat replies.
func (p *Publisher) CommandDispatched(ctx context.Context, res commands.Result) {
	if p == nil || p.nc == nil {
		return
	}

	subject := Subject(res.Command)
	if res.Failure == commands.FailureUnknown {
		subject = Subject("")
	}

	payload, err := json.Marshal(NewCommandEvent(res, p.now()))
	if err != nil {
		p.logger.WarnContext(ctx, "failed to encode command event", "error", err)
		return
	}

	if p.nc.IsClosed() {
		p.logger.WarnContext(ctx, "dropping command event, nats connection closed", "subject", subject)
		return
	}
	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.WarnContext(ctx, "failed to publish command event", "subject", subject, "error", err)
	}
}

// Close flushes pending events and closes the connection.
func (p *Publisher) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
