package relay

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// fakeOutbox records every frame per connection. Every id is live until it
// is detached.
type fakeOutbox struct {
	mu          sync.Mutex
	frames      map[domain.ConnID][]Frame
	raw         map[domain.ConnID][][]byte
	detached    map[domain.ConnID]bool
	detachedAll bool
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{
		frames:   make(map[domain.ConnID][]Frame),
		raw:      make(map[domain.ConnID][][]byte),
		detached: make(map[domain.ConnID]bool),
	}
}

func (o *fakeOutbox) Send(id domain.ConnID, frame []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.detached[id] || o.detachedAll {
		return false
	}
	var f Frame
	if err := json.Unmarshal(frame, &f); err != nil {
		panic(err)
	}
	o.frames[id] = append(o.frames[id], f)
	o.raw[id] = append(o.raw[id], frame)
	return true
}

func (o *fakeOutbox) Detach(id domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.detached[id] = true
}

func (o *fakeOutbox) DetachAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.detachedAll = true
}

// take returns and clears the frames sent to id.
func (o *fakeOutbox) take(id domain.ConnID) []Frame {
	o.mu.Lock()
	defer o.mu.Unlock()

	frames := o.frames[id]
	delete(o.frames, id)
	delete(o.raw, id)
	return frames
}

func (o *fakeOutbox) takeRaw(id domain.ConnID) [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()

	raw := o.raw[id]
	delete(o.frames, id)
	delete(o.raw, id)
	return raw
}

func (o *fakeOutbox) isDetached(id domain.ConnID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.detached[id]
}

func (o *fakeOutbox) wasDetachedAll() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.detachedAll
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func payloadOf[T any](t *testing.T, f Frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Payload, &v))
	return v
}

func typesOf(frames []Frame) []EventType {
	out := make([]EventType, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Type)
	}
	return out
}
