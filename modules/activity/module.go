package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/example/meeting-relay/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

const defaultLogSize = 100

// ActivityModule consumes relay events and keeps counters and a bounded log
// of recent activity for diagnostics.
type ActivityModule struct {
	summary Summary
	recent  []Entry
	logSize int
	mu      sync.RWMutex
	logger  types.Logger
}

var (
	_ mono.Module                = (*ActivityModule)(nil)
	_ mono.EventConsumerModule   = (*ActivityModule)(nil)
	_ mono.ServiceProviderModule = (*ActivityModule)(nil)
	_ mono.HealthCheckableModule = (*ActivityModule)(nil)
)

// NewModule creates an ActivityModule keeping the last logSize entries.
func NewModule(logSize int, logger types.Logger) *ActivityModule {
	if logSize <= 0 {
		logSize = defaultLogSize
	}
	return &ActivityModule{
		recent:  make([]Entry, 0, logSize),
		logSize: logSize,
		logger:  logger.WithModule("activity"),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.UserJoinedV1, m.handleUserJoined, m); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ChatMessageSentV1, m.handleChatMessageSent, m); err != nil {
		return fmt.Errorf("failed to register ChatMessageSent consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserDisconnectedV1, m.handleUserDisconnected, m); err != nil {
		return fmt.Errorf("failed to register UserDisconnected consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", []string{"UserJoined", "ChatMessageSent", "UserDisconnected"})
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSummary, json.Unmarshal, json.Marshal, m.handleSummary,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSummary, err)
	}
	return nil
}

func (m *ActivityModule) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary.Joins++
	m.record(Entry{
		Kind:      KindJoin,
		Room:      event.RoomKey,
		Conn:      event.ConnID,
		Detail:    "members=" + strconv.Itoa(event.Members),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *ActivityModule) handleChatMessageSent(_ context.Context, event events.ChatMessageSentEvent, _ *mono.Msg) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary.ChatMessages++
	m.summary.ChatBytes += int64(event.ContentLength)
	m.record(Entry{
		Kind:      KindChat,
		Room:      event.RoomKey,
		Conn:      event.ConnID,
		Detail:    event.DisplayName,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *ActivityModule) handleUserDisconnected(_ context.Context, event events.UserDisconnectedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary.Disconnects++
	m.summary.OnlineMillis += event.OnlineMillis
	m.record(Entry{
		Kind:      KindDisconnect,
		Room:      event.RoomKey,
		Conn:      event.ConnID,
		Detail:    (time.Duration(event.OnlineMillis) * time.Millisecond).String(),
		Timestamp: event.Timestamp,
	})
	return nil
}

// record appends e, evicting the oldest entry once the log is full.
// Callers hold m.mu.
func (m *ActivityModule) record(e Entry) {
	if len(m.recent) == m.logSize {
		m.recent = slices.Delete(m.recent, 0, 1)
	}
	m.recent = append(m.recent, e)
}

func (m *ActivityModule) handleSummary(_ context.Context, req SummaryRequest, _ *mono.Msg) (SummaryResponse, error) {
	return SummaryResponse{Summary: m.GetSummary(req.Limit)}, nil
}

// GetSummary returns the counters and up to limit recent entries, newest
// first. A limit of zero or less returns the whole log.
func (m *ActivityModule) GetSummary(limit int) Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.summary
	n := len(m.recent)
	if limit > 0 && limit < n {
		n = limit
	}
	out.Recent = make([]Entry, 0, n)
	for i := len(m.recent) - 1; i >= len(m.recent)-n; i-- {
		out.Recent = append(out.Recent, m.recent[i])
	}
	return out
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Activity module started", "log_size", m.logSize)
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.logger.Info("Activity module stopped",
		"joins", m.summary.Joins,
		"chat_messages", m.summary.ChatMessages,
		"disconnects", m.summary.Disconnects)
	return nil
}

func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"logged_entries": len(m.recent),
		},
	}
}
