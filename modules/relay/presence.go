package relay

import (
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
)

// Presence records when each connection joined a room so the online time can
// be reported at disconnect. It is diagnostic only. Not safe for concurrent use.
type Presence struct {
	joinedAt map[domain.ConnID]time.Time
	now      func() time.Time
}

// NewPresence creates a Presence using now as its clock. A nil clock means
// time.Now.
func NewPresence(now func() time.Time) *Presence {
	if now == nil {
		now = time.Now
	}
	return &Presence{
		joinedAt: make(map[domain.ConnID]time.Time),
		now:      now,
	}
}

// RecordJoin stores the current time as conn's join time.
func (p *Presence) RecordJoin(conn domain.ConnID) {
	p.joinedAt[conn] = p.now()
}

// ConsumeOnDisconnect removes conn's record and returns how long it was
// online. The duration is never negative, even if the clock went backwards.
// ok is false when conn never joined.
func (p *Presence) ConsumeOnDisconnect(conn domain.ConnID) (online time.Duration, ok bool) {
	joined, ok := p.joinedAt[conn]
	if !ok {
		return 0, false
	}
	delete(p.joinedAt, conn)

	online = p.now().Sub(joined)
	if online < 0 {
		online = -online
	}
	return online, true
}

// Len returns the number of open presence records.
func (p *Presence) Len() int {
	return len(p.joinedAt)
}
