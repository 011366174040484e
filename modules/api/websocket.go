package api

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/example/meeting-relay/modules/broadcast"
	"github.com/example/meeting-relay/modules/relay"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// handleWebSocket handles websocket connections at /ws. The connection gets a
// fresh id, a hub client drained by its own write pump, and a read loop that
// feeds decoded frames to the router.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	id := domain.ConnID(uuid.New().String())
	client := broadcast.NewClient(id, c, m.cfg.SendBufferSize)
	if err := m.hub.Attach(client); err != nil {
		m.logger.Error("Failed to attach client", "conn", id, "error", err)
		return
	}

	go func() {
		if err := client.WritePump(m.cfg.WriteTimeout, m.cfg.PingInterval); err != nil {
			m.logger.Debug("Write pump stopped", "conn", id, "error", err)
		}
	}()
	defer m.release(id, client)

	ctx := context.Background()
	if err := m.gateway.Connect(ctx, id); err != nil {
		m.logger.Warn("Failed to register connection", "conn", id, "error", err)
		return
	}

	readTimeout := m.cfg.ReadTimeout()
	c.SetReadLimit(m.cfg.MaxFrameBytes)
	_ = c.SetReadDeadline(time.Now().Add(readTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(readTimeout))
	})

	limiter := m.newChatLimiter()
	m.logger.Debug("WebSocket client connected", "conn", id)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				m.logger.Warn("WebSocket read error", "conn", id, "error", err)
			}
			return
		}

		event, err := relay.DecodeInbound(data)
		if err != nil {
			m.logger.Debug("Frame dropped", "conn", id, "error", err)
			continue
		}

		if _, isChat := event.(relay.ChatPost); isChat && limiter != nil && !limiter.Allow() {
			m.logger.Debug("Chat rate limit exceeded, frame dropped", "conn", id)
			continue
		}

		if err := m.gateway.Submit(ctx, id, event); err != nil {
			if errors.Is(err, relay.ErrRouterStopped) {
				return
			}
			m.logger.Warn("Failed to submit event", "conn", id, "error", err)
		}
	}
}

// release queues the disconnect and waits for the write pump, which must not
// outlive the handler since the connection is recycled on return.
func (m *APIModule) release(id domain.ConnID, client *broadcast.Client) {
	if err := m.gateway.Disconnect(id); err != nil {
		m.hub.Detach(id)
	}

	select {
	case <-client.Done():
	case <-time.After(2 * m.cfg.WriteTimeout):
		m.logger.Warn("Write pump did not finish", "conn", id)
	}
	m.logger.Debug("WebSocket client disconnected", "conn", id)
}

// newChatLimiter returns nil when chat rate limiting is disabled.
func (m *APIModule) newChatLimiter() *rate.Limiter {
	if m.cfg.ChatRatePerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(m.cfg.ChatRatePerSecond), m.cfg.ChatBurst)
}
