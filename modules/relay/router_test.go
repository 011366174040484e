package relay

import (
	"context"
	"testing"
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/example/meeting-relay/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func startRouter(t *testing.T, opts ...RouterOption) (*Router, *fakeOutbox) {
	t.Helper()
	outbox := newFakeOutbox()
	r := NewRouter(outbox, &mockLogger{}, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	t.Cleanup(func() {
		cancel()
		r.Wait()
	})
	return r, outbox
}

// settle waits until every event queued so far has been handled.
func settle(t *testing.T, r *Router) {
	t.Helper()
	_, err := r.Stats(context.Background())
	require.NoError(t, err)
}

func connect(t *testing.T, r *Router, outbox *fakeOutbox, ids ...domain.ConnID) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, r.Connect(context.Background(), id))
	}
	settle(t, r)
	for _, id := range ids {
		frames := outbox.take(id)
		require.Len(t, frames, 1)
		require.Equal(t, TypeConnected, frames[0].Type)
	}
}

func submit(t *testing.T, r *Router, id domain.ConnID, event Inbound) {
	t.Helper()
	require.NoError(t, r.Submit(context.Background(), id, event))
}

func TestRouter_ConnectSendsID(t *testing.T) {
	r, outbox := startRouter(t)

	require.NoError(t, r.Connect(context.Background(), "a"))
	settle(t, r)

	frames := outbox.take("a")
	require.Len(t, frames, 1)
	assert.Equal(t, TypeConnected, frames[0].Type)
	assert.Equal(t, ConnectedPayload{ID: "a"}, payloadOf[ConnectedPayload](t, frames[0]))

	stats, err := r.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Connections)
	assert.Zero(t, stats.Rooms)
}

func TestRouter_FirstJoinCreatesRoom(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a")

	submit(t, r, "a", JoinCall{Path: "room"})
	settle(t, r)

	frames := outbox.take("a")
	require.Len(t, frames, 1, "no replay expected for an empty room")
	assert.Equal(t, TypeUserJoined, frames[0].Type)
	assert.Equal(t,
		UserJoinedPayload{ID: "a", Clients: []domain.ConnID{"a"}},
		payloadOf[UserJoinedPayload](t, frames[0]))

	rooms, err := r.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, domain.RoomKey("room"), rooms[0].Key)
	assert.Equal(t, []domain.ConnID{"a"}, rooms[0].Members)
}

func TestRouter_SecondJoinGetsBacklog(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a", "b")

	submit(t, r, "a", JoinCall{Path: "room"})
	submit(t, r, "a", ChatPost{Data: "first", Sender: "alice"})
	submit(t, r, "a", ChatPost{Data: "second", Sender: "alice"})
	settle(t, r)
	outbox.take("a")

	submit(t, r, "b", JoinCall{Path: "room"})
	settle(t, r)

	joined := UserJoinedPayload{ID: "b", Clients: []domain.ConnID{"a", "b"}}

	framesA := outbox.take("a")
	require.Len(t, framesA, 1)
	assert.Equal(t, joined, payloadOf[UserJoinedPayload](t, framesA[0]))

	framesB := outbox.take("b")
	assert.Equal(t,
		[]EventType{TypeUserJoined, TypeChatMessage, TypeChatMessage},
		typesOf(framesB))
	assert.Equal(t, joined, payloadOf[UserJoinedPayload](t, framesB[0]))
	assert.Equal(t,
		ChatMessagePayload{Data: "first", Sender: "alice", SenderID: "a"},
		payloadOf[ChatMessagePayload](t, framesB[1]))
	assert.Equal(t,
		ChatMessagePayload{Data: "second", Sender: "alice", SenderID: "a"},
		payloadOf[ChatMessagePayload](t, framesB[2]))
}

func TestRouter_ChatBroadcastIncludesSender(t *testing.T) {
	clock := newFakeClock()
	r, outbox := startRouter(t, WithClock(clock.Now))
	connect(t, r, outbox, "a", "b")
	submit(t, r, "a", JoinCall{Path: "room"})
	submit(t, r, "b", JoinCall{Path: "room"})
	settle(t, r)
	outbox.take("a")
	outbox.take("b")

	submit(t, r, "b", ChatPost{Data: "hi", Sender: "bob"})
	settle(t, r)

	want := ChatMessagePayload{Data: "hi", Sender: "bob", SenderID: "b"}
	for _, id := range []domain.ConnID{"a", "b"} {
		frames := outbox.take(id)
		require.Len(t, frames, 1, "conn %s", id)
		assert.Equal(t, TypeChatMessage, frames[0].Type)
		assert.Equal(t, want, payloadOf[ChatMessagePayload](t, frames[0]))
	}

	history, err := r.History(context.Background(), "room")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ChatMessage{
		Content:           "hi",
		SenderDisplayName: "bob",
		SenderConn:        "b",
		SentAt:            clock.Now(),
	}, history[0])
}

func TestRouter_ChatOutsideRoomDropped(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a", "c")
	submit(t, r, "a", JoinCall{Path: "room"})
	settle(t, r)
	outbox.take("a")

	submit(t, r, "c", ChatPost{Data: "anyone?", Sender: "carol"})
	settle(t, r)

	assert.Empty(t, outbox.take("a"))
	assert.Empty(t, outbox.take("c"))

	history, err := r.History(context.Background(), "room")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRouter_SignalReachesOnlyTarget(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a", "b", "c")
	for _, id := range []domain.ConnID{"a", "b", "c"} {
		submit(t, r, id, JoinCall{Path: "room"})
	}
	settle(t, r)
	for _, id := range []domain.ConnID{"a", "b", "c"} {
		outbox.take(id)
	}

	payload := "{\"type\":\"answer\",\"sdp\":\"v=0\\r\\na=ice-ufrag:F7gI\\r\\n\",\"unicode\":\"café\"}"
	submit(t, r, "a", SignalRequest{To: "b", Message: payload})
	settle(t, r)

	frames := outbox.take("b")
	require.Len(t, frames, 1)
	assert.Equal(t, TypeSignal, frames[0].Type)
	got := payloadOf[SignalPayload](t, frames[0])
	assert.Equal(t, domain.ConnID("a"), got.From)
	assert.Equal(t, payload, got.Message)

	assert.Empty(t, outbox.take("a"))
	assert.Empty(t, outbox.take("c"))
}

func TestRouter_SignalBeforeJoin(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a", "b")

	submit(t, r, "a", SignalRequest{To: "b", Message: "ping"})
	settle(t, r)

	frames := outbox.take("b")
	require.Len(t, frames, 1)
	assert.Equal(t, SignalPayload{From: "a", Message: "ping"}, payloadOf[SignalPayload](t, frames[0]))
}

func TestRouter_SignalToUnknownTarget(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a", "b")
	require.NoError(t, r.Disconnect("b"))
	settle(t, r)

	submit(t, r, "a", SignalRequest{To: "b", Message: "late"})
	submit(t, r, "a", SignalRequest{To: "nobody", Message: "lost"})
	settle(t, r)

	assert.Empty(t, outbox.take("a"))
	assert.Empty(t, outbox.take("b"))
}

func TestRouter_LastLeaveDeletesRoomHistorySurvives(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a")
	submit(t, r, "a", JoinCall{Path: "room"})
	submit(t, r, "a", ChatPost{Data: "remember me", Sender: "alice"})
	require.NoError(t, r.Disconnect("a"))
	settle(t, r)

	rooms, err := r.Rooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
	assert.True(t, outbox.isDetached("a"))

	connect(t, r, outbox, "b")
	submit(t, r, "b", JoinCall{Path: "room"})
	settle(t, r)

	frames := outbox.take("b")
	assert.Equal(t, []EventType{TypeUserJoined, TypeChatMessage}, typesOf(frames))
	assert.Equal(t,
		ChatMessagePayload{Data: "remember me", Sender: "alice", SenderID: "a"},
		payloadOf[ChatMessagePayload](t, frames[1]))

	rooms, err = r.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, []domain.ConnID{"b"}, rooms[0].Members)
	assert.Equal(t, 1, rooms[0].History)
}

func TestRouter_DoubleJoinIgnored(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a")
	submit(t, r, "a", JoinCall{Path: "first"})
	settle(t, r)
	outbox.take("a")

	submit(t, r, "a", JoinCall{Path: "second"})
	submit(t, r, "a", JoinCall{Path: "first"})
	settle(t, r)

	assert.Empty(t, outbox.take("a"))
	rooms, err := r.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, domain.RoomKey("first"), rooms[0].Key)
	assert.Equal(t, []domain.ConnID{"a"}, rooms[0].Members)
}

func TestRouter_EventsFromUnknownConnectionIgnored(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a")
	submit(t, r, "a", JoinCall{Path: "room"})
	settle(t, r)
	outbox.take("a")

	submit(t, r, "ghost", JoinCall{Path: "room"})
	submit(t, r, "ghost", ChatPost{Data: "boo"})
	submit(t, r, "ghost", SignalRequest{To: "a", Message: "boo"})
	settle(t, r)

	assert.Empty(t, outbox.take("a"))
	assert.Empty(t, outbox.take("ghost"))

	stats, err := r.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Connections)
	assert.Equal(t, 1, stats.InRoom)
	assert.Zero(t, stats.HistoryRooms)
}

func TestRouter_DisconnectNotifiesRemaining(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a", "b")
	submit(t, r, "a", JoinCall{Path: "room"})
	submit(t, r, "b", JoinCall{Path: "room"})
	settle(t, r)
	outbox.take("a")
	outbox.take("b")

	require.NoError(t, r.Disconnect("b"))
	submit(t, r, "b", ChatPost{Data: "after close"})
	settle(t, r)

	frames := outbox.take("a")
	require.Len(t, frames, 1)
	assert.Equal(t, TypeUserDisconnected, frames[0].Type)
	assert.Equal(t, UserDisconnectedPayload{ID: "b"}, payloadOf[UserDisconnectedPayload](t, frames[0]))
	assert.True(t, outbox.isDetached("b"))

	stats, err := r.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{
		Connections:     1,
		Rooms:           1,
		InRoom:          1,
		HistoryRooms:    0,
		PresenceRecords: 1,
	}, stats)
}

func TestRouter_DisconnectBeforeJoin(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a", "b")
	submit(t, r, "a", JoinCall{Path: "room"})
	settle(t, r)
	outbox.take("a")

	require.NoError(t, r.Disconnect("b"))
	settle(t, r)

	assert.Empty(t, outbox.take("a"))
	assert.True(t, outbox.isDetached("b"))
}

func TestRouter_ObserverNotified(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockObserver(ctrl)
	clock := newFakeClock()
	r, outbox := startRouter(t, WithObserver(observer), WithClock(clock.Now))

	gomock.InOrder(
		observer.EXPECT().UserJoined(domain.RoomKey("room"), domain.ConnID("a"), 1),
		observer.EXPECT().ChatMessageAppended(domain.RoomKey("room"), gomock.Any()).
			Do(func(_ domain.RoomKey, msg domain.ChatMessage) {
				assert.Equal(t, "hello", msg.Content)
				assert.Equal(t, domain.ConnID("a"), msg.SenderConn)
			}),
		observer.EXPECT().UserDisconnected(domain.RoomKey("room"), domain.ConnID("a"), 5*time.Second),
	)

	connect(t, r, outbox, "a")
	submit(t, r, "a", JoinCall{Path: "room"})
	settle(t, r)

	clock.Advance(5 * time.Second)
	submit(t, r, "a", ChatPost{Data: "hello", Sender: "alice"})
	require.NoError(t, r.Disconnect("a"))
	settle(t, r)
}

func TestRouter_DuplicateConnectIgnored(t *testing.T) {
	r, outbox := startRouter(t)
	connect(t, r, outbox, "a")

	require.NoError(t, r.Connect(context.Background(), "a"))
	settle(t, r)

	assert.Empty(t, outbox.take("a"))
}

func TestRouter_StopDetachesAll(t *testing.T) {
	outbox := newFakeOutbox()
	r := NewRouter(outbox, &mockLogger{}, WithQueueSize(4))
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)

	require.NoError(t, r.Connect(context.Background(), "a"))
	cancel()
	r.Wait()

	assert.True(t, outbox.wasDetachedAll())
	assert.ErrorIs(t, r.Submit(context.Background(), "a", ChatPost{Data: "x"}), ErrRouterStopped)
	assert.ErrorIs(t, r.Disconnect("a"), ErrRouterStopped)

	_, err := r.Rooms(context.Background())
	assert.ErrorIs(t, err, ErrRouterStopped)
}

func TestRouter_QueryHonoursContext(t *testing.T) {
	r := NewRouter(newFakeOutbox(), &mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Stats(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
