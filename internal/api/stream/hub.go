package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/metrics"
	"github.com/wonny/breakwatch/pkg/logger"
)

const (
	// MaxClients is the maximum number of concurrent subscribers
	MaxClients = 100

	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

// Message is the envelope pushed to subscribers
type Message struct {
	Type string              `json:"type"`
	Data *contracts.Snapshot `json:"data"`
	Time time.Time           `json:"time"`
}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	accepted chan bool // Run's answer to a register request
}

// Hub pushes every published snapshot to websocket subscribers.
// A subscriber that falls behind is dropped.
// ⭐ SSOT: snapshot streaming goes through this hub only
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	upgrader   websocket.Upgrader
	done       chan struct{}
	maxClients int

	mu     sync.RWMutex
	latest []byte
	count  atomic.Int64

	metrics *metrics.Registry
	logger  *logger.Logger
}

// NewHub creates a hub. Call Run before serving connections. m may be nil.
func NewHub(m *metrics.Registry, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		maxClients: MaxClients,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		metrics: m,
		logger:  log.Component("stream"),
	}
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
			}
			h.clients = make(map[*client]bool)
			h.setCount()
			return

		case c := <-h.register:
			if len(h.clients) >= h.maxClients {
				c.accepted <- false
				continue
			}
			h.clients[c] = true
			c.accepted <- true
			if latest := h.Latest(); latest != nil {
				c.send <- latest
			}
			h.setCount()
			h.logger.WithField("clients", len(h.clients)).Debug("Subscriber connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.setCount()
			h.logger.WithField("clients", len(h.clients)).Debug("Subscriber disconnected")

		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.setCount()
		}
	}
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	h.metrics.SetStreamClients(len(h.clients))
}

// Clients returns the number of registered subscribers
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish queues a snapshot for every subscriber. It never blocks the pipeline.
func (h *Hub) Publish(snapshot *contracts.Snapshot) {
	data, err := json.Marshal(Message{Type: "snapshot", Data: snapshot, Time: time.Now()})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode snapshot")
		return
	}

	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Stream broadcast queue full, snapshot dropped")
	}
}

// Latest returns the last encoded message, or nil
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// ServeWS upgrades the request and subscribes the connection
// GET /ws/snapshots
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		accepted: make(chan bool, 1),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	// Run answers every register it receives
	if !<-c.accepted {
		h.logger.Warn("Subscriber rejected: at capacity")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server at capacity"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; subscribers do not send commands
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.WithError(err).Debug("Websocket read error")
			}
			return
		}
	}
}
