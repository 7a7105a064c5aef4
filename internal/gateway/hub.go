package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kestrelworks/smsbridge/internal/infrastructure/config"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/influxdb"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/logging"
)

// defaultSendBufferSize is the per-subscriber outbound buffer size when
// not configured.
const defaultSendBufferSize = 256

// Hub manages event channel subscribers and broadcasts events.
//
// Every subscriber receives every event broadcast while its connection
// is open. Delivery to one subscriber never blocks delivery to others:
// a full buffer simply drops that subscriber's copy of the event.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger
	influx *influxdb.Client // optional telemetry, may be nil

	subscribers map[*Subscriber]struct{}
	mu          sync.RWMutex
}

// Subscriber is a live event channel connection. It has no persistent
// identity; the id exists only for log correlation.
type Subscriber struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// The event channel advertises an open cross-origin policy.
		return true
	},
}

// NewHub creates a new event hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger, influx *influxdb.Client) *Hub {
	return &Hub{
		cfg:         cfg,
		logger:      logger,
		influx:      influx,
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects all
// subscribers.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a subscriber and announces the new connection count to
// every subscriber, the newcomer included.
func (h *Hub) Register(sub *Subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Debug("event subscriber connected", "subscriber_id", sub.id, "subscribers", count)
	h.Broadcast(newStatusEvent(count))
}

// Unregister removes a subscriber from the broadcast set.
// Only the goroutine that successfully removes the subscriber from the
// map closes the send channel, preventing double-close panics during
// shutdown.
func (h *Hub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	_, existed := h.subscribers[sub]
	delete(h.subscribers, sub)
	h.mu.Unlock()

	if existed {
		close(sub.send)
	}
	h.logger.Debug("event subscriber disconnected", "subscriber_id", sub.id, "subscribers", h.SubscriberCount())
}

// Broadcast delivers an event to every currently open subscriber.
// Safe to call concurrently from any producer; broadcasting with zero
// subscribers is a no-op.
//
// Lock ordering: the subscriber set is snapshotted under the hub lock,
// which is released before any socket write is attempted.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to marshal broadcast event", "type", evt.Type, "error", err)
		return
	}

	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.trySend(data)
	}

	if len(subs) > 0 {
		h.logger.Debug("event broadcast", "type", evt.Type, "recipients", len(subs))
	}
	if h.influx != nil {
		h.influx.WriteBroadcast(evt.Type, len(subs))
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// closeAll disconnects all subscribers and closes their send channels
// so writePump goroutines can exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		close(sub.send)
		if sub.conn != nil {
			sub.conn.Close()
		}
		delete(h.subscribers, sub)
	}
}

// handleWebSocket upgrades the HTTP connection and registers the new
// subscriber. The event channel requires no authentication; it reveals
// events, not the store.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	bufSize := s.wsCfg.SendBuffer
	if bufSize <= 0 {
		bufSize = defaultSendBufferSize
	}

	sub := &Subscriber{
		id:   uuid.NewString(),
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, bufSize),
	}

	s.hub.Register(sub)

	go sub.writePump(s.wsCfg)
	go sub.readPump(s.wsCfg)
}

// readPump reads frames from the subscriber connection. Client frames
// are not part of the control protocol; each one is acknowledged and
// otherwise ignored.
func (c *Subscriber) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
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
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "subscriber_id", c.id, "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "subscriber_id", c.id, "error", err)
			}
			return
		}
		// Any client frame resets the read deadline (keeps connection
		// alive even if the client doesn't answer protocol pings).
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.acknowledge()
	}
}

// writePump writes queued events to the subscriber connection.
func (c *Subscriber) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// acknowledge replies to a client frame with an ack envelope.
func (c *Subscriber) acknowledge() {
	data, err := json.Marshal(newAckEvent())
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend attempts to queue data for the subscriber. It silently
// handles closed channels (subscriber disconnected during broadcast)
// and full buffers (slow subscriber).
func (c *Subscriber) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
		// Subscriber buffer full, skip
	}
}
