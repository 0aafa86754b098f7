package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/padworks/padlink/internal/broadcast"
	"github.com/padworks/padlink/internal/infrastructure/config"
	"github.com/padworks/padlink/internal/infrastructure/logging"
)

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// wsClient is one WebSocket connection fed by a broadcast subscription.
// The subscription delivers the snapshot first, then live events; the
// write pump relays the pre-marshalled frames verbatim.
type wsClient struct {
	conn   *websocket.Conn
	sub    *broadcast.Subscriber
	hub    *broadcast.Hub
	logger *logging.Logger
	stop   func() bool // releases the server shutdown hook
}

// handleWebSocket upgrades the HTTP connection and streams device
// events: first {"type":"SNAPSHOT","buttons":[...]}, then one frame per
// press/release.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sub, err := s.hub.Subscribe()
	if err != nil {
		// Hub is closed; the process is shutting down.
		s.logger.Debug("websocket subscribe failed", "error", err)
		conn.Close()
		return
	}

	client := &wsClient{
		conn:   conn,
		sub:    sub,
		hub:    s.hub,
		logger: s.logger,
	}

	// Close() cannot reach hijacked connections; tie each one to the
	// server lifetime instead. Start wires baseCtx; router-only tests
	// run without it.
	if s.baseCtx != nil {
		client.stop = context.AfterFunc(s.baseCtx, func() {
			conn.Close()
		})
	}

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump consumes messages from the WebSocket connection. Clients are
// not expected to send anything; reading is what surfaces disconnects
// and pong frames.
func (c *wsClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			} else {
				c.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		// Any client message resets the read deadline (keeps connection alive
		// even if browser doesn't respond to protocol-level pings).
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	}
}

// writePump relays subscription frames to the WebSocket connection and
// pings on an interval.
func (c *wsClient) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		if c.stop != nil {
			c.stop()
		}
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sub.C:
			if !ok {
				// Hub closed the subscription
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
