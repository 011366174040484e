package api

import "time"

// RoomResponse is the API response for a live room.
type RoomResponse struct {
	Key         string   `json:"key"`
	Members     []string `json:"members"`
	MemberCount int      `json:"member_count"`
	History     int      `json:"history"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}

// MessageResponse is the API response for a chat message.
type MessageResponse struct {
	Data     string    `json:"data"`
	Sender   string    `json:"sender"`
	SenderID string    `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
}

// HistoryResponse is the API response for a room's chat history.
type HistoryResponse struct {
	Room     string            `json:"room"`
	Messages []MessageResponse `json:"messages"`
	Total    int               `json:"total"`
}

// StatsResponse is the API response for relay counters.
type StatsResponse struct {
	Connections     int   `json:"connections"`
	Rooms           int   `json:"rooms"`
	InRoom          int   `json:"in_room"`
	HistoryRooms    int   `json:"history_rooms"`
	PresenceRecords int   `json:"presence_records"`
	AttachedClients int   `json:"attached_clients"`
	DroppedFrames   int64 `json:"dropped_frames"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
