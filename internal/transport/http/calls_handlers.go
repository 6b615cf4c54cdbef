package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/callengine"
	"github.com/vovakirdan/securecomm-server/internal/core"
)

// CallsHandlers hands out media credentials to room participants.
type CallsHandlers struct {
	coord    *core.Coordinator
	engine   callengine.Engine
	sessions core.SessionIssuer
	log      *zerolog.Logger
}

// NewCallsHandlers creates call handlers. A nil engine disables calls. When
// sessions is set, callers must prove their slot with its session token.
func NewCallsHandlers(coord *core.Coordinator, engine callengine.Engine, sessions core.SessionIssuer, logger *zerolog.Logger) *CallsHandlers {
	return &CallsHandlers{
		coord:    coord,
		engine:   engine,
		sessions: sessions,
		log:      logger,
	}
}

// CallToken returns LiveKit join info for a connection currently in the room.
// GET /api/rooms/:id/call-token?participant=<connection id>
// Authorization: Bearer <session token> (required when sessions are enabled)
func (h *CallsHandlers) CallToken(c *gin.Context) {
	if h.engine == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: core.ErrCodeCallsDisabled})
		return
	}

	roomID := normalizeRoomID(c.Param("id"))
	connID := c.Query("participant")
	if connID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrCodeBadRequest})
		return
	}

	participant, err := h.coord.Member(roomID, connID)
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCodeRoomNotFound})
		return
	case errors.Is(err, core.ErrNotInRoom):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrCodeNotInRoom})
		return
	case err != nil:
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to look up participant")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if h.sessions != nil {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || h.sessions.Verify(token, roomID, participant.Name) != nil {
			h.log.Warn().Str("room_id", roomID).Str("conn_id", connID).Msg("call token refused: bad session token")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
	}

	info, err := h.engine.GenerateJoinInfo(c.Request.Context(), roomID, participant.ID, participant.Name)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Str("conn_id", connID).Msg("failed to generate join info")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_id", roomID).Str("conn_id", connID).Str("media_room", info.RoomName).Msg("call token issued")
	c.JSON(http.StatusOK, info)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}
