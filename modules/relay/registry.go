package relay

import (
	"errors"
	"slices"
	"sort"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/samber/lo"
)

// ErrAlreadyInRoom is returned when a connection that already belongs to a
// room tries to join again.
var ErrAlreadyInRoom = errors.New("connection already in a room")

// Registry tracks which connections are in which room.
//
// Rooms keep their members in join order. A reverse index maps each member to
// its room, so a connection is in at most one room and lookups by connection
// are constant time. A room exists only while it has members.
//
// Registry is not safe for concurrent use; the router goroutine owns it.
type Registry struct {
	rooms map[domain.RoomKey][]domain.ConnID
	owner map[domain.ConnID]domain.RoomKey
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomKey][]domain.ConnID),
		owner: make(map[domain.ConnID]domain.RoomKey),
	}
}

// Join appends conn to room, creating the room if needed, and returns the
// room's members in join order (conn included).
func (r *Registry) Join(room domain.RoomKey, conn domain.ConnID) ([]domain.ConnID, error) {
	if _, ok := r.owner[conn]; ok {
		return nil, ErrAlreadyInRoom
	}

	r.rooms[room] = append(r.rooms[room], conn)
	r.owner[conn] = room
	return slices.Clone(r.rooms[room]), nil
}

// Leave removes conn from its room. The room is deleted when it becomes empty.
// found is false when conn was not in any room.
func (r *Registry) Leave(conn domain.ConnID) (room domain.RoomKey, remaining []domain.ConnID, found bool) {
	room, found = r.owner[conn]
	if !found {
		return "", nil, false
	}
	delete(r.owner, conn)

	remaining = lo.Without(r.rooms[room], conn)
	if len(remaining) == 0 {
		delete(r.rooms, room)
		return room, []domain.ConnID{}, true
	}
	r.rooms[room] = remaining
	return room, slices.Clone(remaining), true
}

// OwnerRoomOf returns the room conn belongs to.
func (r *Registry) OwnerRoomOf(conn domain.ConnID) (domain.RoomKey, bool) {
	room, ok := r.owner[conn]
	return room, ok
}

// Members returns a snapshot of the members of room.
func (r *Registry) Members(room domain.RoomKey) []domain.ConnID {
	return slices.Clone(r.rooms[room])
}

// Keys returns the keys of all live rooms, sorted.
func (r *Registry) Keys() []domain.RoomKey {
	keys := lo.Keys(r.rooms)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	return len(r.rooms)
}

// MemberCount returns the number of connections that are in a room.
func (r *Registry) MemberCount() int {
	return len(r.owner)
}
