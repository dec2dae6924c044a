package bridge

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/powerpack/internal/logging"
	"github.com/muurk/powerpack/internal/metrics"
	"github.com/muurk/powerpack/internal/routes"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Outgoing messages queued per host before it is dropped as too slow
	sendBuffer = 16
)

// MessageType names a bridge message
type MessageType string

const (
	// TypeRoute is sent by the host: show the page at Path
	TypeRoute MessageType = "route"
	// TypeReady is sent to the host once the console has booted
	TypeReady MessageType = "ready"
	// TypeNavigate is sent to the host when the operator changes page
	TypeNavigate MessageType = "navigate"
	// TypeError is sent to the host when one of its messages is rejected
	TypeError MessageType = "error"
)

// Message is the JSON document exchanged with host shells
type Message struct {
	Type  MessageType     `json:"type"`
	Path  string          `json:"path,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
}

// hostConn is one connected host shell
type hostConn struct {
	id     string
	remote string
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

// close ends the write loop, which closes the socket
func (h *hostConn) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.send)
	}
}

// queue adds data to the send queue. It reports false when the queue is
// full; a closed host silently discards.
func (h *hostConn) queue(data []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return true
	}
	select {
	case h.send <- data:
		return true
	default:
		return false
	}
}

// handleShell upgrades a host shell connection and serves it until it
// disconnects.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	h := &hostConn{
		id:     uuid.NewString(),
		remote: r.RemoteAddr,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	s.mu.Lock()
	s.hosts[h.id] = h
	ready, path := s.ready, s.path
	s.mu.Unlock()

	metrics.BridgeHosts.Inc()
	logging.LogConnection(h.id, h.remote, "connected")

	// Late joiners learn the current state straight away
	if ready {
		s.sendTo(h, Message{Type: TypeReady})
		s.sendTo(h, Message{Type: TypeNavigate, Path: path})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.writeLoop(h)
	}()

	s.readLoop(h)

	s.mu.Lock()
	delete(s.hosts, h.id)
	s.mu.Unlock()
	h.close()

	metrics.BridgeHosts.Dec()
	logging.LogConnection(h.id, h.remote, "disconnected")
}

// readLoop consumes host messages until the connection fails
func (s *Server) readLoop(h *hostConn) {
	h.conn.SetReadLimit(maxMessageSize)
	_ = h.conn.SetReadDeadline(time.Now().Add(pongWait))
	h.conn.SetPongHandler(func(string) error {
		return h.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Host connection closed unexpectedly",
					zap.String("conn_id", h.id),
					zap.Error(err),
				)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendTo(h, Message{Type: TypeError, Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case TypeRoute:
			if !strings.HasPrefix(msg.Path, "/") {
				s.sendTo(h, Message{Type: TypeError, Error: "route path must start with /"})
				continue
			}
			if !s.deliver(routes.Change{Path: msg.Path, State: msg.State}) {
				return
			}
			logging.Debug("Host route change",
				zap.String("conn_id", h.id),
				zap.String("path", msg.Path),
			)

		default:
			s.sendTo(h, Message{Type: TypeError, Error: "unknown message type " + string(msg.Type)})
		}
	}
}

// deliver hands a change to the console. It returns false once the bridge
// is shutting down.
func (s *Server) deliver(c routes.Change) bool {
	s.mu.Lock()
	s.path = c.Path
	s.mu.Unlock()

	select {
	case s.changes <- c:
		return true
	case <-s.done:
		return false
	}
}

// writeLoop sends queued messages and keepalive pings
func (s *Server) writeLoop(h *hostConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = h.conn.Close()
	}()

	for {
		select {
		case data, ok := <-h.send:
			_ = h.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = h.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := h.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = h.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := h.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendTo queues msg for one host. A host whose queue is full is dropped.
func (s *Server) sendTo(h *hostConn, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("Failed to encode bridge message", zap.Error(err))
		return
	}

	if !h.queue(data) {
		logging.Warn("Host too slow, dropping connection", zap.String("conn_id", h.id))
		h.close()
	}
}

// broadcast queues msg for every connected host
func (s *Server) broadcast(msg Message) {
	s.mu.RLock()
	hosts := make([]*hostConn, 0, len(s.hosts))
	for _, h := range s.hosts {
		hosts = append(hosts, h)
	}
	s.mu.RUnlock()

	for _, h := range hosts {
		s.sendTo(h, msg)
	}
}
