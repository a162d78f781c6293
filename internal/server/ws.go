package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/triggerboard/internal/grid"
)

// wsCloseGrace bounds the close handshake on shutdown.
const wsCloseGrace = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the dashboard is read-only and unauthenticated, like /api/sse
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS streams grid snapshots over a WebSocket, one JSON text message
// per update, starting with the current snapshot. Messages from the client
// are read and dropped so close frames are seen.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.cfg.Grid.Subscribe()
	defer s.cfg.Grid.Unsubscribe(ch)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(snap grid.Snapshot) error {
		_ = conn.SetWriteDeadline(time.Now().Add(sseWriteTimeout))
		return conn.WriteJSON(snap)
	}

	if err := send(s.cfg.Grid.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := send(snap); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsCloseGrace))
			return
		}
	}
}
