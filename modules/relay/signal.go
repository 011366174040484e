package relay

import (
	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/go-monolith/mono/pkg/types"
)

// Outbox delivers encoded frames to live connections.
type Outbox interface {
	// Send queues frame for id and reports whether id is a live connection.
	Send(id domain.ConnID, frame []byte) bool
	// Detach forgets id and stops its delivery.
	Detach(id domain.ConnID)
	// DetachAll detaches every connection.
	DetachAll()
}

// SignalRelay forwards opaque signaling payloads between two connections.
// It keeps no state.
type SignalRelay struct {
	outbox Outbox
	logger types.Logger
}

// NewSignalRelay creates a SignalRelay delivering through outbox.
func NewSignalRelay(outbox Outbox, logger types.Logger) *SignalRelay {
	return &SignalRelay{outbox: outbox, logger: logger}
}

// Forward sends payload to target, stamped with source. The source is always
// the connection the request arrived on. Forwarding to a connection that is
// not live is a silent no-op; the return value reports whether it was routed.
func (s *SignalRelay) Forward(source, target domain.ConnID, payload string) bool {
	frame, err := EncodeFrame(TypeSignal, SignalPayload{From: source, Message: payload})
	if err != nil {
		s.logger.Error("Failed to encode signal", "from", source, "error", err)
		return false
	}

	if !s.outbox.Send(target, frame) {
		s.logger.Debug("Signal target not connected", "from", source, "to", target)
		return false
	}
	return true
}
