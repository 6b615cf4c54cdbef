package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeJoinRoom    = "join-room"
	InboundTypeSendMessage = "send-message"
	InboundTypeTypingStart = "typing-start"
	InboundTypeTypingStop  = "typing-stop"
	InboundTypeStartCall   = "start-call"
	InboundTypeAcceptCall  = "accept-call"
	InboundTypeRejectCall  = "reject-call"
	InboundTypeEndCall     = "end-call"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventRoomMessages        = "room-messages"
	EventNewMessage          = "new-message"
	EventParticipantsUpdated = "participants-updated"
	EventUserTyping          = "user-typing"
	EventIncomingCall        = "incoming-call"
	EventCallAccepted        = "call-accepted"
	EventCallRejected        = "call-rejected"
	EventCallEnded           = "call-ended"
	EventSession             = "session"
)

// JoinRoomData requests to join a room under a display name.
type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	Token    string `json:"token,omitempty"`
}

// SendMessageData is a chat message from the client. Sender is accepted for
// compatibility and ignored; the server uses the joined display name.
type SendMessageData struct {
	Content   string `json:"content"`
	Sender    string `json:"sender,omitempty"`
	Type      string `json:"type,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
}

// StartCallData announces a call.
type StartCallData struct {
	IsVideo bool `json:"isVideo"`
}

// CallTargetData addresses the caller when accepting or rejecting.
type CallTargetData struct {
	CallerID string `json:"callerId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Message is a chat message as seen by clients. Timestamps are unix millis.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Sender    string `json:"sender"`
	Type      string `json:"type"`
	FileName  string `json:"fileName,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	Encrypted bool   `json:"encrypted"`
}

// Participant is a room occupant as seen by clients.
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsOnline bool   `json:"isOnline"`
	JoinedAt int64  `json:"joinedAt"`
}

// UserTyping relays a typing state change.
type UserTyping struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

// IncomingCall announces a call to the room.
type IncomingCall struct {
	From     string `json:"from"`
	IsVideo  bool   `json:"isVideo"`
	CallerID string `json:"callerId"`
}

// CallAccepted tells the caller who answered.
type CallAccepted struct {
	AccepterID string `json:"accepterId"`
}

// Session hands the client a token for reclaiming its name after a reconnect.
type Session struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	Token    string `json:"token"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
