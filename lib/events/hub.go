package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
)

// DefaultSubscriberBuffer is the per-subscriber queue length.
const DefaultSubscriberBuffer = 64

// Hub fans CommandEvents out to in-process subscribers such as the
// websocket event stream. A subscriber that falls behind loses events
// instead of slowing down dispatch.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan CommandEvent]struct{}
	buffer int
	logger *slog.Logger
	now    func() time.Time
}

var _ commands.Observer = (*Hub)(nil)

// NewHub creates a hub. buffer <= 0 uses DefaultSubscriberBuffer.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[chan CommandEvent]struct{}),
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe registers a new subscriber. The returned func unsubscribes and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan CommandEvent, func()) {
	ch := make(chan CommandEvent, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// CommandDispatched delivers res to every subscriber without blocking.
func (h *Hub) CommandDispatched(ctx context.Context, res commands.Result) {
	if h == nil {
		return
	}
	ev := NewCommandEvent(res, h.now())

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.DebugContext(ctx, "dropping event for slow subscriber", "id", ev.ID, "command", ev.Command)
		}
	}
}
