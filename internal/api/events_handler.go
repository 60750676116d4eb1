package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/session"
)

const (
	eventBuffer       = 64
	eventWriteTimeout = 10 * time.Second
)

// EventSource hands out per-owner subscriptions to store events.
type EventSource interface {
	Subscribe(owner string, buffer int) (<-chan session.Event, func())
}

// EventsHandler pushes the caller's session and draft events over a WebSocket
// so other tabs and devices stay in sync.
type EventsHandler struct {
	source  EventSource
	origins []string
}

func NewEventsHandler(source EventSource, origins []string) *EventsHandler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &EventsHandler{source: source, origins: origins}
}

// ServeHTTP godoc
// @Summary      Live session events
// @Description  WebSocket. Each frame is one JSON session event for the caller's workspace. Client frames are ignored.
// @Tags         Sessions
// @Param        X-User-ID  header  string  false  "Signed-in user id"
// @Success      101
// @Router       /v1/events [get]
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "owner", ident.Key())
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "owner", ident.Key())
		}
	}()

	events, unsubscribe := h.source.Subscribe(ident.Key(), eventBuffer)
	defer unsubscribe()
	slog.Info("Event stream opened", "owner", ident.Key())

	// CloseRead discards client frames and cancels ctx once the peer goes away.
	ctx := ws.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			slog.Info("Event stream closed by client", "owner", ident.Key())
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(ctx, ws, e); err != nil {
				slog.Warn("Could not write event, closing stream", "owner", ident.Key(), "error", err)
				return
			}
		}
	}
}

func (h *EventsHandler) write(ctx context.Context, ws *websocket.Conn, e session.Event) error {
	ctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, e)
}
