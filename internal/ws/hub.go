package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cornerwatch-go/internal/models"
)

// Message types pushed to clients
const (
	TypeStatus       = "status"
	TypeZones        = "zones"
	TypeNotification = "notification"
)

// Message is one JSON frame on the live feed
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// sendBuffer is the number of encoded frames queued per client. A client
// that falls this far behind is disconnected.
const sendBuffer = 32

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks; false means the client is gone or its queue is full
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans status snapshots and notifications out to websocket clients.
// Every client owns a writer goroutine, so callers never wait on the network.
type Hub struct {
	clients map[*client]struct{}
	mu      sync.RWMutex
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(conn *websocket.Conn) *client {
	c := newClient(conn)
	n := h.add(c)
	h.logger.Debug().Str("remote", conn.RemoteAddr().String()).Int("clients", n).Msg("Live feed client registered")
	return c
}

func (h *Hub) add(c *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return len(h.clients)
}

// unregister drops c and signals its writer, which closes the connection
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	c.close()
	if ok {
		h.logger.Debug().Msg("Live feed client unregistered")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) snapshotClients() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast queues msg for every client. Clients whose queue is full are
// disconnected rather than waited for.
func (h *Hub) Broadcast(msg Message) {
	clients := h.snapshotClients()
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode live feed message")
		return
	}

	for _, c := range clients {
		if !c.enqueue(data) {
			h.logger.Warn().Str("type", msg.Type).Msg("Live feed client too slow, disconnecting")
			h.unregister(c)
		}
	}
}

// Notify forwards a motion, corner or profile notification to clients
func (h *Hub) Notify(n models.Notification) {
	h.Broadcast(Message{Type: TypeNotification, Timestamp: n.Timestamp, Data: n})
}

// Run pushes the snapshot messages every interval while clients are connected.
// It returns when ctx is done, after telling every client to go away.
func (h *Hub) Run(ctx context.Context, interval time.Duration, snapshot func() []Message) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Msg("Live feed panic recovered")
		}
	}()

	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			for _, msg := range snapshot() {
				h.Broadcast(msg)
			}
		}
	}
}

func (h *Hub) closeAll() {
	for _, c := range h.snapshotClients() {
		h.unregister(c)
	}
}
