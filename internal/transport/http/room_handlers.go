package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/core"
)

// RoomHandlers exposes read-only views of live rooms.
type RoomHandlers struct {
	coord *core.Coordinator
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(coord *core.Coordinator, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		coord: coord,
		log:   logger,
	}
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	ID               string `json:"id"`
	CreatedAt        string `json:"createdAt"`
	ParticipantCount int    `json:"participantCount"`
	MessageCount     int    `json:"messageCount"`
}

// ParticipantResponse is a room occupant. Connection ids are not exposed.
type ParticipantResponse struct {
	Name     string `json:"name"`
	IsOnline bool   `json:"isOnline"`
	JoinedAt string `json:"joinedAt"`
}

// RoomDetailResponse is a room with its participant list.
type RoomDetailResponse struct {
	RoomResponse
	Participants []ParticipantResponse `json:"participants"`
}

func toRoomResponse(s core.RoomSummary) RoomResponse {
	return RoomResponse{
		ID:               s.ID,
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
		ParticipantCount: len(s.Participants),
		MessageCount:     s.MessageCount,
	}
}

// ListRooms handles listing live rooms, oldest first.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms := h.coord.Rooms()

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, toRoomResponse(room))
	}

	h.log.Debug().Int("room_count", len(rooms)).Msg("rooms listed")
	c.JSON(http.StatusOK, response)
}

// GetRoom returns one live room with its participants.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	roomID := normalizeRoomID(c.Param("id"))
	room, ok := h.coord.Room(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCodeRoomNotFound})
		return
	}

	participants := make([]ParticipantResponse, 0, len(room.Participants))
	for _, p := range room.Participants {
		participants = append(participants, ParticipantResponse{
			Name:     p.Name,
			IsOnline: p.IsOnline,
			JoinedAt: p.JoinedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, RoomDetailResponse{
		RoomResponse: toRoomResponse(room),
		Participants: participants,
	})
}
