package core

import "fmt"

// ReconnectPolicy decides who may take over a display name that is already
// present in a room.
type ReconnectPolicy string

const (
	// ReconnectByName lets any join with a matching name replace the stale
	// participant. Cheap for clients, but names can be hijacked.
	ReconnectByName ReconnectPolicy = "name"
	// ReconnectByToken requires the session token issued on the original join.
	ReconnectByToken ReconnectPolicy = "token"
)

// ParseReconnectPolicy validates a configured policy name.
func ParseReconnectPolicy(s string) (ReconnectPolicy, error) {
	switch ReconnectPolicy(s) {
	case "", ReconnectByName:
		return ReconnectByName, nil
	case ReconnectByToken:
		return ReconnectByToken, nil
	default:
		return "", fmt.Errorf("unknown reconnect policy %q", s)
	}
}

// SessionIssuer mints and checks tokens bound to a (room, name) slot.
type SessionIssuer interface {
	Issue(roomID, name string) (string, error)
	Verify(token, roomID, name string) error
}
