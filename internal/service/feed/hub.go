package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"FinResearch/internal/domain/models"
	"FinResearch/pkg/logger"

	"github.com/gorilla/websocket"
)

// CheckOrigin is left nil so the upgrader rejects cross-origin handshakes.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Message is the frame pushed to subscribers.
type Message struct {
	Type    string             `json:"type"`
	Payload models.ReportEvent `json:"payload"`
}

type client struct {
	owner string
	send  chan []byte
}

// Hub pushes delivered-report events to websocket subscribers of the same owner.
// Each subscriber has its own writer goroutine, so publishing never waits on a peer.
type Hub struct {
	log     *logger.Logger
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(l *logger.Logger) *Hub {
	if l == nil {
		l = logger.Nop()
	}
	return &Hub{log: l, clients: make(map[*client]struct{})}
}

func (h *Hub) register(owner string) *client {
	c := &client{owner: owner, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Serve upgrades the request and keeps the connection registered until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, owner string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := h.register(owner)
	h.log.Debug("feed subscriber connected", logger.String("owner", owner))

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(conn, c)
	}()

	// drain until the peer closes; subscribers never send anything meaningful
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
	<-done
	_ = conn.Close()
	return nil
}

func (h *Hub) writeLoop(conn *websocket.Conn, c *client) {
	for data := range c.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warn("feed write failed", logger.String("owner", c.owner), logger.Error(err))
			// unblocks the read loop in Serve
			_ = conn.Close()
			for range c.send {
			}
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// PublishReport queues evt for every subscriber of evt.Owner and returns without
// waiting for delivery. A subscriber whose queue is full misses the frame.
func (h *Hub) PublishReport(_ context.Context, evt models.ReportEvent) error {
	data, err := json.Marshal(Message{Type: evt.Event, Payload: evt})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.owner != evt.Owner {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.Warn("feed subscriber queue full, frame dropped", logger.String("owner", c.owner), logger.String("report_id", evt.ID))
		}
	}
	return nil
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
