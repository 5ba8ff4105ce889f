package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/logger"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/middleware"
)

const (
	eventWriteTimeout = 10 * time.Second
	eventPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Callers authenticate with a bearer token, not cookies.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamEvents streams one JSON CommandEvent per dispatched command over a
// websocket until the client goes away.
func (s *ApiService) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if s.Events == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "unavailable", "event stream disabled")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	events, unsubscribe := s.Events.Subscribe()
	defer unsubscribe()

	subject := middleware.CallerFromContext(ctx)
	log.InfoContext(ctx, "event stream opened", "subject", subject)

	// Drain client frames so close and pong control messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(eventPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			log.InfoContext(ctx, "event stream closed", "subject", subject)
			return
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := ws.WriteJSON(ev); err != nil {
				log.WarnContext(ctx, "failed to write event", "error", err)
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventWriteTimeout)); err != nil {
				return
			}
		}
	}
}
