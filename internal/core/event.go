package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomMessages delivers the full room log to a connection that just joined.
	EventRoomMessages EventKind = iota
	// EventNewMessage notifies the room about an appended message.
	EventNewMessage
	// EventParticipantsUpdated carries a full snapshot of the participant list.
	EventParticipantsUpdated
	// EventUserTyping relays a typing state change.
	EventUserTyping

	// Call signaling events
	// EventIncomingCall announces a call to the rest of the room.
	EventIncomingCall
	// EventCallAccepted notifies the caller that someone answered.
	EventCallAccepted
	// EventCallRejected notifies the caller that the call was declined.
	EventCallRejected
	// EventCallEnded notifies the room that the call is over.
	EventCallEnded

	// EventSession hands a reconnect token to the joining connection.
	EventSession
	// EventError notifies a single connection about a rejected request.
	EventError
)

var eventNames = [...]string{
	EventRoomMessages:        "room-messages",
	EventNewMessage:          "new-message",
	EventParticipantsUpdated: "participants-updated",
	EventUserTyping:          "user-typing",
	EventIncomingCall:        "incoming-call",
	EventCallAccepted:        "call-accepted",
	EventCallRejected:        "call-rejected",
	EventCallEnded:           "call-ended",
	EventSession:             "session",
	EventError:               "error",
}

// String returns the wire name of the event.
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is sent to clients to describe what happened in the system.
type Event interface {
	Kind() EventKind
}

// RoomMessages is the log snapshot sent once on join.
type RoomMessages struct {
	RoomID   string
	Messages []Message
}

// NewMessage announces a message appended to the room log.
type NewMessage struct {
	RoomID  string
	Message Message
}

// ParticipantsUpdated is the participant list after a membership change.
type ParticipantsUpdated struct {
	RoomID       string
	Participants []Participant
}

// UserTyping tells the room that UserID started or stopped typing.
type UserTyping struct {
	UserID   string
	UserName string
	IsTyping bool
}

// IncomingCall is sent to everyone in the room except the caller.
type IncomingCall struct {
	From     string
	IsVideo  bool
	CallerID string
}

// CallAccepted is unicast to the caller.
type CallAccepted struct {
	AccepterID string
}

// CallRejected is unicast to the caller.
type CallRejected struct{}

// CallEnded is sent to everyone in the room except the one hanging up.
type CallEnded struct{}

// Session carries a token that lets the holder reclaim UserName in RoomID.
type Session struct {
	RoomID   string
	UserName string
	Token    string
}

// ErrorEvent reports a rejected request to the requesting connection.
type ErrorEvent struct {
	Err *CoreError
}

func (RoomMessages) Kind() EventKind        { return EventRoomMessages }
func (NewMessage) Kind() EventKind          { return EventNewMessage }
func (ParticipantsUpdated) Kind() EventKind { return EventParticipantsUpdated }
func (UserTyping) Kind() EventKind          { return EventUserTyping }
func (IncomingCall) Kind() EventKind        { return EventIncomingCall }
func (CallAccepted) Kind() EventKind        { return EventCallAccepted }
func (CallRejected) Kind() EventKind        { return EventCallRejected }
func (CallEnded) Kind() EventKind           { return EventCallEnded }
func (Session) Kind() EventKind             { return EventSession }
func (ErrorEvent) Kind() EventKind          { return EventError }

// Delivery addresses one event to one connection.
type Delivery struct {
	ConnID string
	Event  Event
}

func toAll(connIDs []string, ev Event) []Delivery {
	out := make([]Delivery, 0, len(connIDs))
	for _, id := range connIDs {
		out = append(out, Delivery{ConnID: id, Event: ev})
	}
	return out
}

func toOthers(connIDs []string, except string, ev Event) []Delivery {
	out := make([]Delivery, 0, len(connIDs))
	for _, id := range connIDs {
		if id == except {
			continue
		}
		out = append(out, Delivery{ConnID: id, Event: ev})
	}
	return out
}
