package httpapi

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/1broseidon/deskwm/internal/session"
	"github.com/1broseidon/deskwm/internal/wm"
)

const (
	wsSendBuffer   = 64
	wsWriteTimeout = 15 * time.Second
	wsPingInterval = 20 * time.Second
	wsPingTimeout  = 5 * time.Second
	wsReadLimit    = 64 << 10
)

// Message types sent to websocket clients.
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessagePointer  = "pointer"
	MessageMounted  = "mounted"
	MessageError    = "error"
)

// Message is one frame sent to a websocket client.
type Message struct {
	Type      string                 `json:"type"`
	Kind      wm.EventKind           `json:"kind,omitempty"`
	WindowID  string                 `json:"window_id,omitempty"`
	Snapshot  *wm.Snapshot           `json:"snapshot,omitempty"`
	Pointer   *session.PointerResult `json:"pointer,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// seq is the snapshot sequence the message describes, 0 if none.
func (m Message) seq() uint64 {
	if m.Snapshot == nil {
		return 0
	}
	return m.Snapshot.Seq
}

// Inbound is one frame received from a websocket client.
type Inbound struct {
	Type     string                `json:"type"`
	Pointer  *session.PointerEvent `json:"pointer,omitempty"`
	WindowID string                `json:"window_id,omitempty"` // mounted
}

// Hub fans manager events out to websocket clients, dropping slow consumers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	onCount func(int)
}

// NewHub creates a Hub. onCount, if set, is told the client count after
// every change.
func NewHub(onCount func(int)) *Hub {
	return &Hub{clients: make(map[*client]struct{}), onCount: onCount}
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.enqueue(msg) {
			go h.remove(c)
		}
	}
}

// send queues msg for c alone.
func (h *Hub) send(c *client, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if !c.enqueue(msg) {
		go h.remove(c)
	}
}

// register adds a client whose first message is the snapshot returned by
// initial. Broadcasts are held off while initial runs, and events already
// covered by that snapshot are skipped.
func (h *Hub) register(conn wsConn, initial func() wm.Snapshot) *client {
	c := &client{conn: conn, send: make(chan Message, wsSendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	snap := initial()
	c.after = snap.Seq
	c.send <- Message{Type: MessageSnapshot, Snapshot: &snap, Timestamp: time.Now()}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.count(n)
	return c
}

// remove disconnects c. It is safe to call more than once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.count(n)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close(websocket.StatusGoingAway, "server shutting down")
		h.remove(c)
	}
}

func (h *Hub) count(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

type wsConn interface {
	Write(ctx context.Context, msgType websocket.MessageType, data []byte) error
	Close(status websocket.StatusCode, reason string) error
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
}

type client struct {
	conn wsConn
	send chan Message
	// after is the sequence of the initial snapshot.
	after uint64
}

func (c *client) enqueue(msg Message) bool {
	if s := msg.seq(); s != 0 && msg.Type == MessageEvent && s <= c.after {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// writeLoop drains send until the hub drops the client or ctx ends.
func (c *client) writeLoop(ctx context.Context) error {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.close(websocket.StatusPolicyViolation, "client too slow")
				return nil
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *client) close(status websocket.StatusCode, reason string) {
	_ = c.conn.Close(status, reason)
}

func startWSPing(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, wsPingTimeout)
				_ = conn.Ping(pingCtx)
				cancel()
			}
		}
	}()
}
