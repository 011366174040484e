package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/example/meeting-relay/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

const healthTimeout = time.Second

// ErrRoomRequired is returned by get-history when no room is given.
var ErrRoomRequired = errors.New("room is required")

// Module runs the relay router and exposes its state as request-reply
// services. Router notifications are published on the event bus.
type Module struct {
	router   *Router
	eventBus mono.EventBus
	logger   types.Logger
	cancel   context.CancelFunc
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Observer                   = (*Module)(nil)
)

// NewModule creates a relay module delivering frames through outbox.
func NewModule(outbox Outbox, queueSize int, logger types.Logger) *Module {
	m := &Module{
		logger: logger.WithModule("relay"),
	}
	m.router = NewRouter(outbox, m.logger, WithObserver(m), WithQueueSize(queueSize))
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// Router returns the event router fed by the websocket endpoint.
func (m *Module) Router() *Router {
	return m.router
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserJoinedV1.ToBase(),
		events.ChatMessageSentV1.ToBase(),
		events.UserDisconnectedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRooms, json.Unmarshal, json.Marshal, m.listRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetHistory, json.Unmarshal, json.Marshal, m.getHistory,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetHistory, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetStats, json.Unmarshal, json.Marshal, m.getStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStats, err)
	}

	m.logger.Info("Registered services", "services", []string{ServiceListRooms, ServiceGetHistory, ServiceGetStats})
	return nil
}

// Start launches the router loop.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.router.Run(ctx)
	m.logger.Info("Relay module started")
	return nil
}

// Stop stops the router and waits for it to detach every connection.
func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
		m.router.Wait()
	}
	m.logger.Info("Relay module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	stats, err := m.router.Stats(ctx)
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": stats.Connections,
			"rooms":       stats.Rooms,
		},
	}
}

func (m *Module) listRooms(ctx context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	rooms, err := m.router.Rooms(ctx)
	if err != nil {
		return ListRoomsResponse{}, fmt.Errorf("failed to list rooms: %w", err)
	}
	return ListRoomsResponse{Rooms: rooms}, nil
}

func (m *Module) getHistory(ctx context.Context, req GetHistoryRequest, _ *mono.Msg) (GetHistoryResponse, error) {
	if req.Room == "" {
		return GetHistoryResponse{}, ErrRoomRequired
	}

	messages, err := m.router.History(ctx, domain.RoomKey(req.Room))
	if err != nil {
		return GetHistoryResponse{}, fmt.Errorf("failed to get history: %w", err)
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return GetHistoryResponse{Room: req.Room, Messages: messages}, nil
}

func (m *Module) getStats(ctx context.Context, _ GetStatsRequest, _ *mono.Msg) (GetStatsResponse, error) {
	stats, err := m.router.Stats(ctx)
	if err != nil {
		return GetStatsResponse{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return GetStatsResponse{Stats: stats}, nil
}

// UserJoined publishes a UserJoined event.
func (m *Module) UserJoined(room domain.RoomKey, conn domain.ConnID, members int) {
	if m.eventBus == nil {
		return
	}
	event := events.UserJoinedEvent{
		RoomKey:   string(room),
		ConnID:    string(conn),
		Members:   members,
		Timestamp: time.Now(),
	}
	if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserJoined event", "error", err)
	}
}

// ChatMessageAppended publishes a ChatMessageSent event.
func (m *Module) ChatMessageAppended(room domain.RoomKey, msg domain.ChatMessage) {
	if m.eventBus == nil {
		return
	}
	event := events.ChatMessageSentEvent{
		RoomKey:       string(room),
		ConnID:        string(msg.SenderConn),
		DisplayName:   msg.SenderDisplayName,
		ContentLength: len(msg.Content),
		Timestamp:     msg.SentAt,
	}
	if err := events.ChatMessageSentV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish ChatMessageSent event", "error", err)
	}
}

// UserDisconnected publishes a UserDisconnected event.
func (m *Module) UserDisconnected(room domain.RoomKey, conn domain.ConnID, online time.Duration) {
	if m.eventBus == nil {
		return
	}
	event := events.UserDisconnectedEvent{
		RoomKey:      string(room),
		ConnID:       string(conn),
		OnlineMillis: online.Milliseconds(),
		Timestamp:    time.Now(),
	}
	if err := events.UserDisconnectedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserDisconnected event", "error", err)
	}
}
