package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/vovakirdan/securecomm-server/internal/callengine"
)

const defaultTokenTTL = time.Hour

// LiveKitEngine implements callengine.Engine using LiveKit as the media backend.
type LiveKitEngine struct {
	apiKey    string
	apiSecret string
	wsURL     string
	ttl       time.Duration
}

// New creates a new LiveKitEngine.
func New(apiKey, apiSecret, wsURL string) *LiveKitEngine {
	return &LiveKitEngine{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		wsURL:     wsURL,
		ttl:       defaultTokenTTL,
	}
}

// RoomName returns the LiveKit room for a chat room.
// LiveKit creates rooms on-demand when the first participant joins,
// so nothing is provisioned here.
func (e *LiveKitEngine) RoomName(roomID string) string {
	return fmt.Sprintf("securecomm-%s", roomID)
}

// GenerateJoinInfo creates join credentials for a participant of roomID.
func (e *LiveKitEngine) GenerateJoinInfo(_ context.Context, roomID, identity, name string) (*callengine.JoinInfo, error) {
	if roomID == "" || identity == "" {
		return nil, fmt.Errorf("room and identity are required")
	}
	roomName := e.RoomName(roomID)

	at := auth.NewAccessToken(e.apiKey, e.apiSecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}
	at.SetVideoGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(e.ttl)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &callengine.JoinInfo{
		URL:      e.wsURL,
		Token:    token,
		RoomName: roomName,
		Identity: identity,
	}, nil
}

// Ensure LiveKitEngine implements callengine.Engine
var _ callengine.Engine = (*LiveKitEngine)(nil)
