package core

import "time"

// MessageType classifies a chat message.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageVideo  MessageType = "video"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

// SystemSender is the sender of coordinator-generated notices.
const SystemSender = "System"

// ParseClientMessageType maps a client-supplied type to a MessageType.
// An empty string means text. Clients may not send system messages.
func ParseClientMessageType(s string) (MessageType, bool) {
	switch MessageType(s) {
	case "":
		return MessageText, true
	case MessageText, MessageImage, MessageVideo, MessageFile:
		return MessageType(s), true
	default:
		return "", false
	}
}

// HasAttachment reports whether messages of this type carry file metadata.
// Video is handled exactly like a file.
func (t MessageType) HasAttachment() bool {
	return t == MessageImage || t == MessageVideo || t == MessageFile
}

// Message is the domain model for a chat message. It is never modified after
// being appended to a room log.
type Message struct {
	ID        string
	Content   string
	Sender    string
	Type      MessageType
	Timestamp time.Time
	FileName  string
	FileSize  int64
	Encrypted bool
}

// Draft is a message as submitted by a client, before the coordinator assigns
// its id, timestamp and sender.
type Draft struct {
	Content   string
	Type      MessageType
	FileName  string
	FileSize  int64
	Encrypted bool
}
