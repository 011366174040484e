package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/go-monolith/mono/pkg/types"
)

// ErrRouterStopped is returned when an event is submitted after the router
// has stopped.
var ErrRouterStopped = errors.New("router stopped")

const defaultQueueSize = 1024

type connState int

const (
	stateConnected connState = iota + 1
	stateInRoom
)

type envelope struct {
	conn  domain.ConnID
	event any
}

type connectEvent struct{}

type disconnectEvent struct{}

type queryEvent struct {
	fn   func()
	done chan struct{}
}

// Router is the single owner of the relay state. Every event, from any
// connection, is handled to completion on the Run goroutine before the next
// one, so the registry, history and presence maps need no locks and each
// broadcast sees the membership produced by the event that triggered it.
type Router struct {
	registry *Registry
	history  *History
	presence *Presence
	signals  *SignalRelay
	states   map[domain.ConnID]connState

	outbox    Outbox
	observer  Observer
	logger    types.Logger
	now       func() time.Time
	queueSize int

	inbound chan envelope
	done    chan struct{}
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithObserver sets the observer notified after joins, chat messages and
// disconnects.
func WithObserver(o Observer) RouterOption {
	return func(r *Router) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithQueueSize sets the capacity of the inbound queue.
func WithQueueSize(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// NewRouter creates a Router delivering frames through outbox.
func NewRouter(outbox Outbox, logger types.Logger, opts ...RouterOption) *Router {
	r := &Router{
		registry:  NewRegistry(),
		history:   NewHistory(),
		states:    make(map[domain.ConnID]connState),
		outbox:    outbox,
		observer:  nopObserver{},
		logger:    logger,
		now:       time.Now,
		queueSize: defaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.presence = NewPresence(r.now)
	r.signals = NewSignalRelay(outbox, logger)
	r.inbound = make(chan envelope, r.queueSize)
	return r
}

// Run processes events until ctx is cancelled. On return every connection is
// detached from the outbox.
func (r *Router) Run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Router shutting down",
				"connections", len(r.states),
				"rooms", r.registry.RoomCount())
			r.outbox.DetachAll()
			return
		case env := <-r.inbound:
			r.dispatch(env)
		}
	}
}

// Wait blocks until Run has returned.
func (r *Router) Wait() {
	<-r.done
}

// Connect registers a newly accepted connection.
func (r *Router) Connect(ctx context.Context, conn domain.ConnID) error {
	return r.enqueue(ctx, envelope{conn: conn, event: connectEvent{}})
}

// Submit queues an event received from conn.
func (r *Router) Submit(ctx context.Context, conn domain.ConnID, event Inbound) error {
	return r.enqueue(ctx, envelope{conn: conn, event: event})
}

// Disconnect queues the cleanup of conn after its transport closed.
func (r *Router) Disconnect(conn domain.ConnID) error {
	return r.enqueue(context.Background(), envelope{conn: conn, event: disconnectEvent{}})
}

// Rooms returns a snapshot of the live rooms, sorted by key.
func (r *Router) Rooms(ctx context.Context) ([]domain.RoomSummary, error) {
	var rooms []domain.RoomSummary
	err := r.do(ctx, func() {
		keys := r.registry.Keys()
		rooms = make([]domain.RoomSummary, 0, len(keys))
		for _, key := range keys {
			rooms = append(rooms, domain.RoomSummary{
				Key:     key,
				Members: r.registry.Members(key),
				History: r.history.Len(key),
			})
		}
	})
	return rooms, err
}

// History returns the chat log of room.
func (r *Router) History(ctx context.Context, room domain.RoomKey) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := r.do(ctx, func() {
		messages = r.history.Replay(room)
	})
	return messages, err
}

// Stats returns counters describing the relay state.
func (r *Router) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := r.do(ctx, func() {
		stats = domain.Stats{
			Connections:     len(r.states),
			Rooms:           r.registry.RoomCount(),
			InRoom:          r.registry.MemberCount(),
			HistoryRooms:    r.history.RoomCount(),
			PresenceRecords: r.presence.Len(),
		}
	})
	return stats, err
}

func (r *Router) enqueue(ctx context.Context, env envelope) error {
	select {
	case <-r.done:
		return ErrRouterStopped
	default:
	}

	select {
	case r.inbound <- env:
		return nil
	case <-r.done:
		return ErrRouterStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// do runs fn on the router goroutine and waits for it.
func (r *Router) do(ctx context.Context, fn func()) error {
	q := queryEvent{fn: fn, done: make(chan struct{})}
	if err := r.enqueue(ctx, envelope{event: q}); err != nil {
		return err
	}

	select {
	case <-q.done:
		return nil
	case <-r.done:
		select {
		case <-q.done:
			return nil
		default:
			return ErrRouterStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Router) dispatch(env envelope) {
	switch ev := env.event.(type) {
	case queryEvent:
		ev.fn()
		close(ev.done)
		return
	case connectEvent:
		r.handleConnect(env.conn)
		return
	case disconnectEvent:
		r.handleDisconnect(env.conn)
		return
	}

	state, ok := r.states[env.conn]
	if !ok {
		r.logger.Debug("Event from unknown connection ignored", "conn", env.conn)
		return
	}

	switch ev := env.event.(type) {
	case JoinCall:
		r.handleJoin(env.conn, state, ev.Path)
	case SignalRequest:
		r.signals.Forward(env.conn, ev.To, ev.Message)
	case ChatPost:
		r.handleChat(env.conn, ev)
	default:
		r.logger.Warn("Unhandled event", "conn", env.conn, "event", fmt.Sprintf("%T", ev))
	}
}

func (r *Router) handleConnect(conn domain.ConnID) {
	if _, exists := r.states[conn]; exists {
		r.logger.Warn("Connection registered twice", "conn", conn)
		return
	}

	r.states[conn] = stateConnected
	r.sendTo(conn, TypeConnected, ConnectedPayload{ID: conn})
	r.logger.Debug("Connection registered", "conn", conn)
}

func (r *Router) handleJoin(conn domain.ConnID, state connState, room domain.RoomKey) {
	if state == stateInRoom {
		current, _ := r.registry.OwnerRoomOf(conn)
		r.logger.Warn("Duplicate join-call ignored",
			"conn", conn,
			"room", current,
			"requested", room)
		return
	}

	members, err := r.registry.Join(room, conn)
	if err != nil {
		r.logger.Warn("Join rejected", "conn", conn, "room", room, "error", err)
		return
	}
	r.presence.RecordJoin(conn)
	r.states[conn] = stateInRoom

	r.broadcast(members, TypeUserJoined, UserJoinedPayload{ID: conn, Clients: members})

	backlog := r.history.Replay(room)
	for _, msg := range backlog {
		r.sendTo(conn, TypeChatMessage, chatPayload(msg))
	}

	r.logger.Info("Connection joined room",
		"conn", conn,
		"room", room,
		"members", len(members),
		"backlog", len(backlog))
	r.observer.UserJoined(room, conn, len(members))
}

func (r *Router) handleChat(conn domain.ConnID, post ChatPost) {
	room, ok := r.registry.OwnerRoomOf(conn)
	if !ok {
		r.logger.Debug("Chat message from connection outside any room dropped", "conn", conn)
		return
	}

	msg := domain.ChatMessage{
		Content:           post.Data,
		SenderDisplayName: post.Sender,
		SenderConn:        conn,
		SentAt:            r.now(),
	}
	r.history.Append(room, msg)

	// The sender is a member too and renders its own message from the echo.
	r.broadcast(r.registry.Members(room), TypeChatMessage, chatPayload(msg))

	r.logger.Debug("Chat message relayed", "conn", conn, "room", room, "sender", post.Sender)
	r.observer.ChatMessageAppended(room, msg)
}

func (r *Router) handleDisconnect(conn domain.ConnID) {
	_, known := r.states[conn]
	delete(r.states, conn)
	defer r.outbox.Detach(conn)

	if !known {
		r.logger.Debug("Disconnect from unknown connection", "conn", conn)
		return
	}

	room, remaining, found := r.registry.Leave(conn)
	if found && len(remaining) > 0 {
		r.broadcast(remaining, TypeUserDisconnected, UserDisconnectedPayload{ID: conn})
	}

	online, _ := r.presence.ConsumeOnDisconnect(conn)
	r.logger.Info("Connection closed",
		"conn", conn,
		"room", room,
		"online", online.String())
	r.observer.UserDisconnected(room, conn, online)
}

func (r *Router) sendTo(conn domain.ConnID, t EventType, payload any) {
	frame, err := EncodeFrame(t, payload)
	if err != nil {
		r.logger.Error("Failed to encode frame", "type", t, "error", err)
		return
	}
	r.outbox.Send(conn, frame)
}

// broadcast encodes the frame once and queues it for every member.
func (r *Router) broadcast(members []domain.ConnID, t EventType, payload any) {
	frame, err := EncodeFrame(t, payload)
	if err != nil {
		r.logger.Error("Failed to encode frame", "type", t, "error", err)
		return
	}
	for _, member := range members {
		r.outbox.Send(member, frame)
	}
}
