package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Presence & chat event types - Client to Server
const (
	EventRegister        = "register"
	EventSendMessage     = "send_message"
	EventTyping          = "typing"
	EventPresenceRequest = "presence_request"
	EventMarkRead        = "mark_read"
)

// Presence & chat event types - Server to Client
const (
	EventUserOnline       = "user_online"
	EventUserOffline      = "user_offline"
	EventPresenceSnapshot = "presence_snapshot"
	EventReceiveMessage   = "receive_message"
	EventMessageStatus    = "message_status"
	EventMessagesRead     = "messages_read"
)

// WsEvent is the JSON frame exchanged over the socket in both directions.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound is the closed set of events a client may send. Only types in this
// package implement it.
type Inbound interface {
	EventName() string
	validate() error
}

// Outbound is a server to client payload.
type Outbound interface {
	EventName() string
}

// Decode turns a raw frame into its typed inbound variant. Unknown event names
// return ErrUnknownEvent; bad or incomplete payloads return ErrInvalidPayload.
func Decode(ev WsEvent) (Inbound, error) {
	var in Inbound
	switch ev.Event {
	case EventRegister:
		return decodeRegister(ev.Payload)
	case EventSendMessage:
		in = &SendMessage{}
	case EventTyping:
		in = &Typing{}
	case EventPresenceRequest:
		in = &PresenceRequest{}
	case EventMarkRead:
		in = &MarkRead{}
	case EventCallUser:
		in = &CallUser{}
	case EventIcePrefs:
		in = &IcePrefs{}
	case EventAnswerCall:
		in = &AnswerCall{}
	case EventIceCandidate:
		in = &IceCandidate{}
	case EventRenegotiateOffer:
		in = &RenegotiateOffer{}
	case EventRenegotiateAnswer:
		in = &RenegotiateAnswer{}
	case EventEndCall:
		in = &EndCall{}
	case EventRejectCall:
		in = &RejectCall{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Event)
	}

	if len(ev.Payload) > 0 && !isJSONNull(ev.Payload) {
		if err := json.Unmarshal(ev.Payload, in); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, ev.Event, err)
		}
	}

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, ev.Event, err)
	}
	return in, nil
}

// Encode wraps an outbound payload in a frame.
func Encode(out Outbound) (WsEvent, error) {
	payload, err := json.Marshal(out)
	if err != nil {
		return WsEvent{}, fmt.Errorf("marshal %s: %w", out.EventName(), err)
	}
	return WsEvent{Event: out.EventName(), Payload: payload}, nil
}

// register accepts {"userId": "..."} or a bare JSON string.
func decodeRegister(raw json.RawMessage) (Inbound, error) {
	reg := &Register{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &reg.UserID); err != nil {
			return nil, fmt.Errorf("%w: register: %v", ErrInvalidPayload, err)
		}
	} else if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, reg); err != nil {
			return nil, fmt.Errorf("%w: register: %v", ErrInvalidPayload, err)
		}
	}
	if err := reg.validate(); err != nil {
		return nil, fmt.Errorf("%w: register: %v", ErrInvalidPayload, err)
	}
	return reg, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func requireIDs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%s is required", pairs[i])
		}
	}
	return nil
}
