//go:generate go run go.uber.org/mock/mockgen -source=observer.go -destination=../../mocks/mock_observer.go -package=mocks
package relay

import (
	"time"

	domain "github.com/example/meeting-relay/domain/relay"
)

// Observer is notified by the router after state changes. Calls happen on the
// router goroutine and must not block.
type Observer interface {
	UserJoined(room domain.RoomKey, conn domain.ConnID, members int)
	ChatMessageAppended(room domain.RoomKey, msg domain.ChatMessage)
	UserDisconnected(room domain.RoomKey, conn domain.ConnID, online time.Duration)
}

type nopObserver struct{}

func (nopObserver) UserJoined(domain.RoomKey, domain.ConnID, int)                 {}
func (nopObserver) ChatMessageAppended(domain.RoomKey, domain.ChatMessage)        {}
func (nopObserver) UserDisconnected(domain.RoomKey, domain.ConnID, time.Duration) {}
