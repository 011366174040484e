package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserJoinedEvent is emitted when a connection joins a room.
type UserJoinedEvent struct {
	RoomKey   string    `json:"room_key"`
	ConnID    string    `json:"conn_id"`
	Members   int       `json:"members"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessageSentEvent is emitted when a chat message is appended to a room's
// history. The content itself is not carried.
type ChatMessageSentEvent struct {
	RoomKey       string    `json:"room_key"`
	ConnID        string    `json:"conn_id"`
	DisplayName   string    `json:"display_name"`
	ContentLength int       `json:"content_length"`
	Timestamp     time.Time `json:"timestamp"`
}

// UserDisconnectedEvent is emitted when a connection closes. RoomKey is empty
// if the connection never joined a room.
type UserDisconnectedEvent struct {
	RoomKey      string    `json:"room_key,omitempty"`
	ConnID       string    `json:"conn_id"`
	OnlineMillis int64     `json:"online_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event definitions for the relay domain.
var (
	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"relay",
		"UserJoined",
		"v1",
	)

	ChatMessageSentV1 = helper.EventDefinition[ChatMessageSentEvent](
		"relay",
		"ChatMessageSent",
		"v1",
	)

	UserDisconnectedV1 = helper.EventDefinition[UserDisconnectedEvent](
		"relay",
		"UserDisconnected",
		"v1",
	)
)
