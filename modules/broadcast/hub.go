package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/example/meeting-relay/modules/relay"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
)

// ErrDuplicateClient is returned when a client id is attached twice.
var ErrDuplicateClient = errors.New("client already attached")

// Writer is the write side of a websocket connection.
type Writer interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is a live connection with its own outbound queue. Frames are written
// by WritePump, the only goroutine that writes to the connection.
type Client struct {
	ID   domain.ConnID
	conn Writer
	send chan []byte
	done chan struct{}
}

// NewClient creates a client with a send buffer of bufferSize frames.
func NewClient(id domain.ConnID, conn Writer, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

// Done is closed when WritePump returns.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// WritePump writes queued frames and keepalive pings until the client is
// detached or a write fails. The connection is closed on return, which also
// unblocks the reader.
func (c *Client) WritePump(writeTimeout, pingInterval time.Duration) error {
	var ticks <-chan time.Time
	if pingInterval > 0 {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}
	defer close(c.done)
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return err
			}
		case <-ticks:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// Hub is the table of live connections. It implements relay.Outbox: sends
// never block, and a client whose buffer is full loses the frame.
type Hub struct {
	clients map[domain.ConnID]*Client
	mu      sync.RWMutex
	dropped atomic.Int64
	logger  types.Logger
}

var _ relay.Outbox = (*Hub)(nil)

// NewHub creates a new Hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		clients: make(map[domain.ConnID]*Client),
		logger:  logger,
	}
}

// Attach adds a client to the hub.
func (h *Hub) Attach(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client.ID]; exists {
		return ErrDuplicateClient
	}
	h.clients[client.ID] = client
	h.logger.Debug("Client attached", "conn", client.ID)
	return nil
}

// Send queues frame for id. It reports whether id is attached, even when the
// frame had to be dropped.
func (h *Hub) Send(id domain.ConnID, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[id]
	if !ok {
		return false
	}

	select {
	case client.send <- frame:
	default:
		h.dropped.Add(1)
		h.logger.Warn("Send buffer full, frame dropped", "conn", id)
	}
	return true
}

// Detach removes a client and closes its queue so WritePump can finish.
// Detaching an unknown id is a no-op.
func (h *Hub) Detach(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(client.send)
	h.logger.Debug("Client detached", "conn", id)
}

// DetachAll removes every client.
func (h *Hub) DetachAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames were discarded because a buffer was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
