package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/vedit/internal/protocol"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed for the peer to answer a ping.
	pongWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer. Selection messages carry
	// computed styles for every selected element.
	maxMessageSize = 1 << 20
)

// Client roles. Preview clients host the tracked page; editor clients drive
// it and receive its events.
const (
	RolePreview = "preview"
	RoleEditor  = "editor"
)

// Client is one websocket connection.
type Client struct {
	id     string
	role   string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// outbound is a message queued for every client in role, except the sender.
type outbound struct {
	data   []byte
	role   string
	except *Client
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	role := r.URL.Query().Get("role")
	switch role {
	case "":
		role = RoleEditor
	case RolePreview, RoleEditor:
	default:
		http.Error(w, "role must be preview or editor", http.StatusBadRequest)
		return
	}

	if s.shuttingDown() {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	// Origin was checked above against the configured list
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade error")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := &Client{
		id:     uuid.NewString(),
		role:   role,
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go client.writePump()
	client.readPump()
}

// checkOrigin validates the request origin for security
func (s *Server) checkOrigin(r *http.Request) bool {
	return s.isAllowedOrigin(r.Header.Get("Origin"))
}

func (s *Server) runWebSocketHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return

		case client := <-s.register:
			s.clientsMutex.Lock()
			s.clients[client] = true
			clientCount := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Info(ctx, "Client connected", "id", client.id, "role", client.role, "total", clientCount)

		case client := <-s.unregister:
			s.clientsMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.logger.Info(ctx, "Client disconnected", "id", client.id, "total", len(s.clients))
			}
			s.clientsMutex.Unlock()

		case msg := <-s.broadcast:
			var failed []*Client
			s.clientsMutex.RLock()
			for client := range s.clients {
				if client == msg.except || (msg.role != "" && client.role != msg.role) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					failed = append(failed, client)
				}
			}
			s.clientsMutex.RUnlock()

			if len(failed) > 0 {
				s.clientsMutex.Lock()
				for _, client := range failed {
					if _, ok := s.clients[client]; ok {
						delete(s.clients, client)
						close(client.send)
						s.logger.Warn(ctx, nil, "Dropped slow client", "id", client.id)
					}
				}
				s.clientsMutex.Unlock()
			}
		}
	}
}

// publish queues a message for the hub. It never blocks after shutdown.
func (s *Server) publish(msg outbound) {
	select {
	case s.broadcast <- msg:
	case <-s.done:
	}
}

// peerRole is the role a client's messages are relayed to.
func peerRole(role string) string {
	if role == RolePreview {
		return RoleEditor
	}
	return RolePreview
}

// readPump relays protocol messages from the connection to the peer role
func (c *Client) readPump() {
	s := c.server
	defer func() {
		select {
		case s.unregister <- c:
		case <-s.done:
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	// A failed ping in writePump closes the connection and ends the read
	ctx := context.Background()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				s.logger.Debug(ctx, "WebSocket read ended", "id", c.id, "error", err.Error())
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			s.logger.Warn(ctx, err, "Dropped malformed message", "id", c.id)
			continue
		}
		if !protocol.Known(msg.Type) {
			s.logger.Warn(ctx, nil, "Dropped unknown message", "id", c.id, "type", string(msg.Type))
			continue
		}

		s.observe(c, msg)
		s.publish(outbound{data: data, role: peerRole(c.role), except: c})
	}
}

// observe records live-preview edits from editors as pending changes.
func (s *Server) observe(c *Client, msg protocol.Message) {
	if c.role != RoleEditor {
		return
	}

	switch msg.Type {
	case protocol.TypeApplyStyle:
		var payload protocol.ApplyStylePayload
		if err := protocol.DecodePayload(msg, &payload); err != nil || payload.ElementID == "" {
			return
		}
		for _, change := range payload.Changes {
			s.pending.Set(payload.ElementID, change)
		}
	case protocol.TypeUpdateText:
		var payload protocol.UpdateTextPayload
		if err := protocol.DecodePayload(msg, &payload); err != nil || payload.ElementID == "" {
			return
		}
		s.pending.Set(payload.ElementID, textChange(payload.Text))
	}
}

// writePump pumps messages to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := context.Background()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.server.logger.Debug(ctx, "WebSocket write failed", "id", c.id, "error", err.Error())
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pongWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
