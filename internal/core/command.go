package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom binds the connection to a room under a display name.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage appends a message to the bound room and broadcasts it.
	CommandSendMessage
	// CommandTyping relays a typing state change to the rest of the room.
	CommandTyping
	// CommandStartCall announces an incoming call to the rest of the room.
	CommandStartCall
	// CommandAcceptCall tells the caller its call was accepted.
	CommandAcceptCall
	// CommandRejectCall tells the caller its call was rejected.
	CommandRejectCall
	// CommandEndCall tells the rest of the room the call is over.
	CommandEndCall
	// CommandDisconnect is raised by the transport when a connection goes away.
	CommandDisconnect
)

var commandNames = [...]string{
	CommandJoinRoom:    "join-room",
	CommandSendMessage: "send-message",
	CommandTyping:      "typing",
	CommandStartCall:   "start-call",
	CommandAcceptCall:  "accept-call",
	CommandRejectCall:  "reject-call",
	CommandEndCall:     "end-call",
	CommandDisconnect:  "disconnect",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[k]
}

// Command is an action requested by a connection. Every kind has exactly one
// payload type below.
type Command interface {
	Kind() CommandKind
}

// JoinRoom requests membership of RoomID as UserName. Token is only checked
// under the token reconnect policy.
type JoinRoom struct {
	RoomID   string
	UserName string
	Token    string
}

// SendMessage carries a message draft for the bound room.
type SendMessage struct {
	Draft Draft
}

// Typing reports that the sender started or stopped typing.
type Typing struct {
	IsTyping bool
}

// StartCall announces a voice or video call.
type StartCall struct {
	IsVideo bool
}

// AcceptCall answers the call started by CallerID.
type AcceptCall struct {
	CallerID string
}

// RejectCall declines the call started by CallerID.
type RejectCall struct {
	CallerID string
}

// EndCall hangs up.
type EndCall struct{}

// Disconnect removes the connection from its room.
type Disconnect struct{}

func (JoinRoom) Kind() CommandKind    { return CommandJoinRoom }
func (SendMessage) Kind() CommandKind { return CommandSendMessage }
func (Typing) Kind() CommandKind      { return CommandTyping }
func (StartCall) Kind() CommandKind   { return CommandStartCall }
func (AcceptCall) Kind() CommandKind  { return CommandAcceptCall }
func (RejectCall) Kind() CommandKind  { return CommandRejectCall }
func (EndCall) Kind() CommandKind     { return CommandEndCall }
func (Disconnect) Kind() CommandKind  { return CommandDisconnect }
