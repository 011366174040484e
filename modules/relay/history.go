package relay

import (
	"slices"

	domain "github.com/example/meeting-relay/domain/relay"
)

// History keeps the chat log of every room in arrival order.
//
// Logs are unbounded and outlive room membership: a room re-created under the
// same key sees the messages posted before it was emptied. Not safe for
// concurrent use.
type History struct {
	logs map[domain.RoomKey][]domain.ChatMessage
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{
		logs: make(map[domain.RoomKey][]domain.ChatMessage),
	}
}

// Append adds msg to the end of room's log.
func (h *History) Append(room domain.RoomKey, msg domain.ChatMessage) {
	h.logs[room] = append(h.logs[room], msg)
}

// Replay returns a copy of room's log, oldest first. Unknown rooms have an
// empty log.
func (h *History) Replay(room domain.RoomKey) []domain.ChatMessage {
	return slices.Clone(h.logs[room])
}

// Len returns the number of messages logged for room.
func (h *History) Len(room domain.RoomKey) int {
	return len(h.logs[room])
}

// RoomCount returns the number of rooms with a non-empty log.
func (h *History) RoomCount() int {
	return len(h.logs)
}
