package callengine

import (
	"context"
	"errors"
)

// ErrDisabled is returned when no media backend is configured.
var ErrDisabled = errors.New("calls are disabled")

// JoinInfo contains information needed to join a call.
type JoinInfo struct {
	URL      string `json:"url"`      // WebSocket URL (e.g., ws://localhost:7880)
	Token    string `json:"token"`    // JWT token for LiveKit
	RoomName string `json:"roomName"` // LiveKit room name
	Identity string `json:"identity"` // Participant identity in the media room
}

// Engine abstracts the media backend for calls. Call signaling itself stays in
// the chat room; the engine only hands out credentials for the media session.
type Engine interface {
	// RoomName maps a chat room to its media room.
	RoomName(roomID string) string

	// GenerateJoinInfo creates join credentials for a room participant.
	GenerateJoinInfo(ctx context.Context, roomID, identity, name string) (*JoinInfo, error)
}
