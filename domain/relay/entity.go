package relay

import "time"

// ConnID identifies one live transport session. It is issued by the server
// on accept and never reused.
type ConnID string

// RoomKey is the opaque, client-supplied key of a room (usually a page URL).
type RoomKey string

// ChatMessage is one entry of a room's chat history.
type ChatMessage struct {
	Content           string    `json:"content"`
	SenderDisplayName string    `json:"sender"`
	SenderConn        ConnID    `json:"sender_id"`
	SentAt            time.Time `json:"sent_at"`
}

// RoomSummary describes a live room.
type RoomSummary struct {
	Key     RoomKey  `json:"key"`
	Members []ConnID `json:"members"`
	History int      `json:"history"`
}

// Stats is a point-in-time view of the relay state.
type Stats struct {
	Connections     int `json:"connections"`
	Rooms           int `json:"rooms"`
	InRoom          int `json:"in_room"`
	HistoryRooms    int `json:"history_rooms"`
	PresenceRecords int `json:"presence_records"`
}
