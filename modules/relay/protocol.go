package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/go-playground/validator/v10"
)

// EventType names a websocket frame.
type EventType string

// Frame types. join-call, signal and chat-message are accepted from clients;
// signal, chat-message and the rest are sent by the server.
const (
	TypeJoinCall         EventType = "join-call"
	TypeSignal           EventType = "signal"
	TypeChatMessage      EventType = "chat-message"
	TypeConnected        EventType = "connected"
	TypeUserJoined       EventType = "user-joined"
	TypeUserDisconnected EventType = "user-disconnected"
)

// Protocol errors
var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrMissingPayload = errors.New("missing payload")
)

var validate = validator.New()

// Frame is the envelope of every websocket message.
type Frame struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound is an event sent by a client.
type Inbound interface {
	eventType() EventType
}

// JoinCall asks to join the room keyed by Path.
type JoinCall struct {
	Path domain.RoomKey `json:"path" validate:"required,max=2048"`
}

// SignalRequest asks to forward Message to the connection To.
type SignalRequest struct {
	To      domain.ConnID `json:"to" validate:"required"`
	Message string        `json:"message"`
}

// ChatPost is a chat message for the sender's room.
type ChatPost struct {
	Data   string `json:"data"`
	Sender string `json:"sender" validate:"max=256"`
}

func (JoinCall) eventType() EventType      { return TypeJoinCall }
func (SignalRequest) eventType() EventType { return TypeSignal }
func (ChatPost) eventType() EventType      { return TypeChatMessage }

// ConnectedPayload tells a client its server-issued id.
type ConnectedPayload struct {
	ID domain.ConnID `json:"id"`
}

// UserJoinedPayload announces a join together with the full member list.
type UserJoinedPayload struct {
	ID      domain.ConnID   `json:"id"`
	Clients []domain.ConnID `json:"clients"`
}

// SignalPayload carries a forwarded signaling message.
type SignalPayload struct {
	From    domain.ConnID `json:"from"`
	Message string        `json:"message"`
}

// ChatMessagePayload carries one chat message, live or replayed.
type ChatMessagePayload struct {
	Data     string        `json:"data"`
	Sender   string        `json:"sender"`
	SenderID domain.ConnID `json:"sender_id"`
}

// UserDisconnectedPayload announces that a member left.
type UserDisconnectedPayload struct {
	ID domain.ConnID `json:"id"`
}

// DecodeInbound parses and validates a client frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	switch frame.Type {
	case TypeJoinCall:
		return decodeAs[JoinCall](frame.Payload)
	case TypeSignal:
		return decodeAs[SignalRequest](frame.Payload)
	case TypeChatMessage:
		return decodeAs[ChatPost](frame.Payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, frame.Type)
	}
}

func decodeAs[T Inbound](raw json.RawMessage) (Inbound, error) {
	var payload T
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%s: %w", payload.eventType(), ErrMissingPayload)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", payload.eventType(), err)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", payload.eventType(), err)
	}
	return payload, nil
}

// EncodeFrame builds a server frame.
func EncodeFrame(t EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	return json.Marshal(Frame{Type: t, Payload: data})
}

func chatPayload(msg domain.ChatMessage) ChatMessagePayload {
	return ChatMessagePayload{
		Data:     msg.Content,
		Sender:   msg.SenderDisplayName,
		SenderID: msg.SenderConn,
	}
}
