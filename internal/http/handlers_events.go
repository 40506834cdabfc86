package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Hissaria17/alcrm-sub001/internal/broadcast"
)

// EventHandlers streams auth events to the browser over SSE. Tabs keep
// one connection open; a logout in any tab (or another device) arrives
// as a "logout" event and the page tears down its local auth state.
type EventHandlers struct {
	Svc    AuthServiceInterface
	Bcast  broadcast.Subscriber
	Logger *slog.Logger

	// KeepaliveInterval defaults to 25s; short in tests.
	KeepaliveInterval time.Duration
}

func (h *EventHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Events streams logout signals for the authenticated user.
// GET /auth/events.
func (h *EventHandlers) Events(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r, h.Svc)
	if session == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     fmt.Errorf("authentication required"),
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "streaming_unsupported",
			Err:     fmt.Errorf("response writer does not support streaming"),
		})
		return
	}

	// Subscribe before the headers go out so a logout fired the instant
	// the client sees 200 is never missed.
	unsub, signals := h.Bcast.Subscribe()
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := h.KeepaliveInterval
	if keepalive <= 0 {
		keepalive = 25 * time.Second
	}
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	var lastSeen string
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case sig, open := <-signals:
			if !open {
				return
			}
			// Only this user's logouts concern this tab; replays of an
			// already-observed signal are dropped.
			if sig.UserID != session.UserID || sig.Value == lastSeen {
				continue
			}
			lastSeen = sig.Value

			data, err := json.Marshal(sig)
			if err != nil {
				h.logger().WarnContext(r.Context(), "marshal logout signal", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: logout\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
