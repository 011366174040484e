package relay

import (
	domain "github.com/example/meeting-relay/domain/relay"
)

// Service names registered by the relay module.
const (
	ServiceListRooms  = "list-rooms"
	ServiceGetHistory = "get-history"
	ServiceGetStats   = "get-stats"
)

// ListRoomsRequest is the request for the list-rooms service.
type ListRoomsRequest struct{}

// ListRoomsResponse lists the live rooms.
type ListRoomsResponse struct {
	Rooms []domain.RoomSummary `json:"rooms"`
}

// GetHistoryRequest is the request for the get-history service.
type GetHistoryRequest struct {
	Room string `json:"room"`
}

// GetHistoryResponse holds a room's chat log, oldest first.
type GetHistoryResponse struct {
	Room     string               `json:"room"`
	Messages []domain.ChatMessage `json:"messages"`
}

// GetStatsRequest is the request for the get-stats service.
type GetStatsRequest struct{}

// GetStatsResponse holds the relay counters.
type GetStatsResponse struct {
	Stats domain.Stats `json:"stats"`
}
