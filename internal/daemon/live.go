package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"switchlog/internal/api"
	"switchlog/internal/correlator"
	"switchlog/internal/logging"
)

// liveMessage is the envelope pushed to /api/live subscribers.
type liveMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Records   []api.CutRecord `json:"records,omitempty"`
}

// liveHub fans cut-log updates out to websocket subscribers. Slow subscribers
// lose intermediate updates rather than stalling the session writer.
type liveHub struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func newLiveHub(logger *slog.Logger) *liveHub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &liveHub{
		logger: logging.WithComponent(logger, "live"),
		subs:   make(map[chan []byte]struct{}),
	}
}

func (h *liveHub) subscribe() chan []byte {
	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *liveHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *liveHub) closeAll() {
	h.mu.Lock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *liveHub) broadcastRecords(records []correlator.Record) {
	h.broadcast(liveMessage{Type: "records", Records: api.FromRecords(records)})
}

func (h *liveHub) broadcastStopped(sessionID string) {
	h.broadcast(liveMessage{Type: "session_stopped", SessionID: sessionID})
}

func (h *liveHub) broadcast(msg liveMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal live message", logging.Error(err))
		return
	}
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
		}
	}
	h.mu.Unlock()
}

// handleLive upgrades the request to a websocket and streams updates until
// the subscriber disconnects.
func (h *liveHub) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", logging.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "hub closed")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case data, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "daemon stopping")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
