package domain

// WebSocket message types from client.
const (
	MsgTypeJoin            = "join"
	MsgTypeLeave           = "leave"
	MsgTypePing            = "ping"
	MsgTypeSendClaimUpdate = "send_claim_update"
)

// WebSocket message types to client.
const (
	MsgTypeEvent  = "event"
	MsgTypeJoined = "joined"
	MsgTypeLeft   = "left"
	MsgTypePong   = "pong"
	MsgTypeError  = "error"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// ClientMessage is any message a viewer sends. Group is used by join and
// leave, Message by send_claim_update.
type ClientMessage struct {
	Type    string `json:"type"`
	Group   string `json:"group,omitempty"`
	Message string `json:"message,omitempty"`
}

// EventMessage carries a broadcast event to a viewer.
type EventMessage struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Message string `json:"message"`
}

func NewEventMessage(event, message string) *EventMessage {
	return &EventMessage{Type: MsgTypeEvent, Event: event, Message: message}
}

// GroupMessage acknowledges join and leave.
type GroupMessage struct {
	Type  string `json:"type"`
	Group string `json:"group"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
