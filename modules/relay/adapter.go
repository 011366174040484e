package relay

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// RelayPort defines the read-only relay operations used by other modules.
type RelayPort interface {
	ListRooms(ctx context.Context) ([]domain.RoomSummary, error)
	GetHistory(ctx context.Context, room string) ([]domain.ChatMessage, error)
	GetStats(ctx context.Context) (domain.Stats, error)
}

// RelayAdapter implements RelayPort using the service container.
type RelayAdapter struct {
	container mono.ServiceContainer
}

// NewRelayAdapter creates a new RelayAdapter.
func NewRelayAdapter(container mono.ServiceContainer) RelayPort {
	if container == nil {
		panic("relay: ServiceContainer is nil")
	}
	return &RelayAdapter{container: container}
}

// ListRooms returns the live rooms.
func (a *RelayAdapter) ListRooms(ctx context.Context) ([]domain.RoomSummary, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// GetHistory returns the chat log of a room.
func (a *RelayAdapter) GetHistory(ctx context.Context, room string) ([]domain.ChatMessage, error) {
	req := GetHistoryRequest{Room: room}
	var resp GetHistoryResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetHistory,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return resp.Messages, nil
}

// GetStats returns the relay counters.
func (a *RelayAdapter) GetStats(ctx context.Context) (domain.Stats, error) {
	req := GetStatsRequest{}
	var resp GetStatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return resp.Stats, nil
}
