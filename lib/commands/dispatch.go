package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nrednav/cuid2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/clock"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/logger"
	bototel "github.com/adityagautam-dev/aws-telegram-bot/lib/otel"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

// ErrHandlerPanic wraps a recovered handler panic.
var ErrHandlerPanic = errors.New("handler panicked")

// State is a step of a single command's lifecycle.
type State int

const (
	StateIdle State = iota
	StateParsing
	StateInvoking
	StateRendering
	StateReplied
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateInvoking:
		return "invoking"
	case StateRendering:
		return "rendering"
	case StateReplied:
		return "replied"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Failure classifies why a command did not succeed.
type Failure int

const (
	FailureNone Failure = iota
	FailureUsage
	FailureProvider
	FailureRender
	FailureDelivery
	FailureUnknown
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureUsage:
		return "usage"
	case FailureProvider:
		return "provider"
	case FailureRender:
		return "render"
	case FailureDelivery:
		return "delivery"
	case FailureUnknown:
		return "unknown_command"
	default:
		return fmt.Sprintf("failure(%d)", int(f))
	}
}

// Request is one inbound command. ID is generated when empty.
type Request struct {
	ID   string
	Name string
	Args []string
	Sink replies.Sink
}

// Result describes how a dispatch ended.
type Result struct {
	ID      string
	Command string
	State   State
	Failure Failure
	Err     error
	// Path lists every state entered, starting at StateIdle.
	Path      []State
	Delivered int
	Duration  time.Duration
}

func (r *Result) enter(s State) {
	r.State = s
	r.Path = append(r.Path, s)
}

// Observer is notified after every dispatch.
type Observer interface {
	CommandDispatched(ctx context.Context, result Result)
}

// Dispatcher runs commands from a Registry. It is safe for concurrent use;
// each Dispatch holds no state beyond its own call.
type Dispatcher struct {
	registry  *Registry
	logger    *slog.Logger
	clock     clock.Clock
	timeout   time.Duration
	metrics   *bototel.CommandMetrics
	tracer    trace.Tracer
	observers []Observer
	newID     func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the base logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = log }
}

// WithClock sets the clock used for durations.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithTimeout bounds each handler call. Zero means no bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithMetrics records dispatch metrics.
func WithMetrics(m *bototel.CommandMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer opens a span per dispatch.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

// WithIDGenerator overrides command ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) { d.newID = fn }
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   slog.Default(),
		clock:    clock.Real(),
		newID:    cuid2.Generate,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Registry returns the dispatcher's command table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs one command to completion and replies to req.Sink. Unknown
// commands are not replied to; the caller decides what to do with them.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	start := d.clock.Now()
	if req.ID == "" {
		req.ID = d.newID()
	}
	res := Result{ID: req.ID, Command: req.Name}
	res.enter(StateIdle)

	defer func() {
		res.Duration = d.clock.Now().Sub(start)
		d.record(ctx, res)
		for _, o := range d.observers {
			o.CommandDispatched(ctx, res)
		}
	}()

	log := d.logger.With("command", req.Name, "command_id", req.ID)

	cmd, ok := d.registry.Lookup(req.Name)
	if !ok {
		res.Failure = FailureUnknown
		res.Err = fmt.Errorf("%w: %s", ErrUnknownCommand, req.Name)
		log.DebugContext(ctx, "ignoring unknown command")
		return res
	}

	if d.tracer != nil {
		var span trace.Span
		ctx, span = d.tracer.Start(ctx, "Dispatch "+cmd.Name, trace.WithAttributes(
			attribute.String("command", cmd.Name),
			attribute.String("command_id", req.ID),
		))
		defer func() {
			span.SetAttributes(attribute.String("failure", res.Failure.String()))
			if res.Failure != FailureNone && res.Failure != FailureUsage {
				span.SetStatus(codes.Error, res.Failure.String())
			}
			span.End()
		}()
	}

	if d.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("command", cmd.Name))
		d.metrics.InFlight.Add(ctx, 1, attrs)
		defer d.metrics.InFlight.Add(ctx, -1, attrs)
	}

	ctx = logger.AddToContext(ctx, log)
	log.DebugContext(ctx, "dispatching command", "args", len(req.Args))

	// 1. Validate arity before anything reaches the provider
	res.enter(StateParsing)
	args, err := ParseArgs(req.Args, cmd.MinArgs())

	// 2. Run the handler
	var out []replies.Reply
	if err == nil {
		res.enter(StateInvoking)
		out, err = d.invoke(ctx, cmd, args)
	}
	defer d.release(ctx, out)

	if err != nil {
		d.fail(ctx, &res, cmd, req.Sink, err)
		return res
	}

	// 3. Deliver replies in order
	res.enter(StateRendering)
	d.deliver(ctx, &res, cmd, req.Sink, out)
	return res
}

func (d *Dispatcher) invoke(ctx context.Context, cmd Command, args []string) (out []replies.Reply, err error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	return cmd.Handler(ctx, args)
}

// classify maps a handler or parse error to its failure kind.
func classify(err error) Failure {
	var arityErr *ArityError
	var providerErr *gateway.ProviderError
	switch {
	case errors.As(err, &arityErr):
		return FailureUsage
	case errors.As(err, &providerErr):
		return FailureProvider
	default:
		return FailureRender
	}
}

func (d *Dispatcher) fail(ctx context.Context, res *Result, cmd Command, sink replies.Sink, err error) {
	log := logger.FromContext(ctx)
	res.Err = err
	res.Failure = classify(err)

	text := cmd.Failure
	switch res.Failure {
	case FailureUsage:
		text = cmd.Usage()
		log.DebugContext(ctx, "command rejected", "error", err)
	case FailureProvider:
		var providerErr *gateway.ProviderError
		errors.As(err, &providerErr)
		log.ErrorContext(ctx, "provider call failed", "op", providerErr.Op, "code", providerErr.Code, "error", err)
	default:
		res.enter(StateRendering)
		log.ErrorContext(ctx, "failed to render reply", "error", err)
	}
	res.enter(StateFailed)

	if sendErr := sink.SendText(ctx, text); sendErr != nil {
		log.ErrorContext(ctx, "failed to deliver failure reply", "error", sendErr)
		d.recordDeliveryFailure(ctx, cmd.Name)
		res.Err = errors.Join(err, sendErr)
	} else {
		res.Delivered++
	}
	res.enter(StateReplied)
}

func (d *Dispatcher) deliver(ctx context.Context, res *Result, cmd Command, sink replies.Sink, out []replies.Reply) {
	log := logger.FromContext(ctx)

	for _, reply := range out {
		if err := replies.Deliver(ctx, sink, reply); err != nil {
			log.ErrorContext(ctx, "failed to deliver reply", "kind", reply.Kind(), "delivered", res.Delivered, "error", err)
			d.recordDeliveryFailure(ctx, cmd.Name)
			res.Failure = FailureDelivery
			res.Err = err
			res.enter(StateFailed)

			// Only fall back when the chat has seen nothing yet.
			if res.Delivered == 0 {
				if sendErr := sink.SendText(ctx, cmd.Failure); sendErr != nil {
					log.ErrorContext(ctx, "failed to deliver failure reply", "error", sendErr)
					res.Err = errors.Join(err, sendErr)
				}
			}
			break
		}
		res.Delivered++
	}

	if res.Failure == FailureNone {
		log.InfoContext(ctx, "command completed", "replies", res.Delivered)
	}
	res.enter(StateReplied)
}

func (d *Dispatcher) release(ctx context.Context, out []replies.Reply) {
	for _, reply := range out {
		if err := replies.Release(reply); err != nil {
			logger.FromContext(ctx).WarnContext(ctx, "failed to release reply payload", "kind", reply.Kind(), "error", err)
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, res Result) {
	if d.metrics == nil {
		return
	}
	command := res.Command
	if res.Failure == FailureUnknown {
		command = "unknown"
	}
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("failure", res.Failure.String()),
	)
	d.metrics.DispatchTotal.Add(ctx, 1, attrs)
	d.metrics.DispatchDuration.Record(ctx, res.Duration.Seconds(), attrs)
}

func (d *Dispatcher) recordDeliveryFailure(ctx context.Context, command string) {
	if d.metrics == nil {
		return
	}
	d.metrics.DeliveryFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("command", command)))
}
