package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"housie/internal/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 16 * 1024

	sendBuffer      = 256
	presenceTimeout = 3 * time.Second
)

// PresenceTracker is driven by connection lifecycle. Failures are logged only.
type PresenceTracker interface {
	Connect(ctx context.Context, userID int64) error
	Heartbeat(ctx context.Context, userID int64) error
	Disconnect(ctx context.Context, userID int64) error
}

// ClientMessage is what browsers send over the socket.
type ClientMessage struct {
	Type   string `json:"type"`
	Ref    string `json:"ref,omitempty"`
	Table  string `json:"table,omitempty"`
	Event  string `json:"event,omitempty"`
	Filter string `json:"filter,omitempty"`
}

// ServerMessage is what the hub writes back.
type ServerMessage struct {
	Type    string  `json:"type"`
	Ref     string  `json:"ref,omitempty"`
	Payload *Change `json:"payload,omitempty"`
	Code    string  `json:"code,omitempty"`
	Message string  `json:"message,omitempty"`
}

const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgHeartbeat   = "heartbeat"

	MsgChange     = "change"
	MsgSubscribed = "subscribed"
	MsgError      = "error"
	MsgPong       = "pong"
)

type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
	subs   map[string]string // client ref -> broker subscription id
}

// Hub tracks open sockets per user. A user may hold several at once.
type Hub struct {
	broker   *Broker
	presence PresenceTracker

	mu          sync.RWMutex
	connections map[int64]map[*connection]struct{}
}

func NewHub(broker *Broker, presence PresenceTracker) *Hub {
	if presence == nil {
		presence = noopPresence{}
	}
	return &Hub{
		broker:      broker,
		presence:    presence,
		connections: make(map[int64]map[*connection]struct{}),
	}
}

// register returns true when this is the user's first open socket.
func (h *Hub) register(c *connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		set = make(map[*connection]struct{})
		h.connections[c.userID] = set
	}
	set[c] = struct{}{}
	metrics.RealtimeConnections.Inc()
	return len(set) == 1
}

// unregister returns true when the user has no sockets left.
func (h *Hub) unregister(c *connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		return false
	}
	if _, present := set[c]; !present {
		return false
	}
	delete(set, c)
	metrics.RealtimeConnections.Dec()
	if len(set) == 0 {
		delete(h.connections, c.userID)
		return true
	}
	return false
}

func (h *Hub) IsConnected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// ServeWS runs the socket until it closes.
func (h *Hub) ServeWS(conn *websocket.Conn, userID int64) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		subs:   make(map[string]string),
	}

	if h.register(c) {
		h.track("connect", userID, h.presence.Connect)
	}
	log.Printf("realtime: connected user_id=%d", userID)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.closeConnection(c)
		log.Printf("realtime: disconnected user_id=%d", c.userID)
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		h.track("heartbeat", c.userID, h.presence.Heartbeat)
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read error user_id=%d err=%v", c.userID, err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.enqueue(c, ServerMessage{Type: MsgError, Code: "INVALID_JSON", Message: "Failed to parse message"})
			continue
		}
		h.handle(c, msg)
	}
}

func (h *Hub) handle(c *connection, msg ClientMessage) {
	switch msg.Type {
	case MsgSubscribe:
		h.subscribe(c, msg)
	case MsgUnsubscribe:
		c.mu.Lock()
		id, ok := c.subs[msg.Ref]
		delete(c.subs, msg.Ref)
		c.mu.Unlock()
		if ok {
			h.broker.Unsubscribe(id)
		}
	case MsgHeartbeat:
		h.track("heartbeat", c.userID, h.presence.Heartbeat)
		h.enqueue(c, ServerMessage{Type: MsgPong, Ref: msg.Ref})
	default:
		h.enqueue(c, ServerMessage{Type: MsgError, Ref: msg.Ref, Code: "UNKNOWN_TYPE", Message: "Unknown message type: " + msg.Type})
	}
}

func (h *Hub) subscribe(c *connection, msg ClientMessage) {
	if msg.Ref == "" {
		h.enqueue(c, ServerMessage{Type: MsgError, Code: "REF_REQUIRED", Message: "ref is required"})
		return
	}
	topic, err := ParseTopic(msg.Table, msg.Event, msg.Filter)
	if err != nil {
		// Logged only; the client keeps its other subscriptions.
		log.Printf("realtime: subscribe rejected user_id=%d table=%s err=%v", c.userID, msg.Table, err)
		h.enqueue(c, ServerMessage{Type: MsgError, Ref: msg.Ref, Code: "INVALID_SUBSCRIPTION", Message: err.Error()})
		return
	}

	ref := msg.Ref
	sub := h.broker.Subscribe(c.userID, topic, func(_ *Subscription, ch Change) bool {
		return h.enqueue(c, ServerMessage{Type: MsgChange, Ref: ref, Payload: &ch})
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		h.broker.Unsubscribe(sub.ID)
		return
	}
	if old, ok := c.subs[ref]; ok {
		h.broker.Unsubscribe(old)
	}
	c.subs[ref] = sub.ID
	c.mu.Unlock()

	h.enqueue(c, ServerMessage{Type: MsgSubscribed, Ref: ref})
}

// enqueue never blocks; a full buffer drops the message.
func (h *Hub) enqueue(c *connection, msg ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) closeConnection(c *connection) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	ids := make([]string, 0, len(c.subs))
	for _, id := range c.subs {
		ids = append(ids, id)
	}
	c.subs = nil
	close(c.send)
	c.mu.Unlock()

	for _, id := range ids {
		h.broker.Unsubscribe(id)
	}
	c.conn.Close()

	if h.unregister(c) {
		h.track("disconnect", c.userID, h.presence.Disconnect)
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) track(action string, userID int64, fn func(context.Context, int64) error) {
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := fn(ctx, userID); err != nil {
		log.Printf("realtime: presence %s failed user_id=%d err=%v", action, userID, err)
	}
}

type noopPresence struct{}

func (noopPresence) Connect(context.Context, int64) error    { return nil }
func (noopPresence) Heartbeat(context.Context, int64) error  { return nil }
func (noopPresence) Disconnect(context.Context, int64) error { return nil }
