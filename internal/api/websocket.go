package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/markxbrooks/Mol-MiDial/internal/logger"
	"github.com/markxbrooks/Mol-MiDial/internal/services/pubsub"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 10 * time.Second

	// updateBufferSize bounds the per-client queue. Parameter updates are
	// idempotent absolute values, so dropping stale ones is harmless.
	updateBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for WebSocket
	},
}

// handleUpdates streams parameter updates to a WebSocket client. An
// optional ?target= query restricts the stream to one target function.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", err)
		return
	}

	filter := r.URL.Query().Get("target")
	sub := s.pubsub.Subscribe(pubsub.TopicParameterUpdated, filter, updateBufferSize)
	defer s.pubsub.Unsubscribe(sub)
	defer func() { _ = conn.Close() }()

	logger.Debugf("WebSocket client subscribed (filter=%q)", filter)

	// Reader goroutine: we never expect client messages, but reading is
	// required to notice the peer closing the connection.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-clientGone:
			return
		case msg, ok := <-sub.Channel:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debugf("WebSocket write failed: %v", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
