package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/store"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// JournalHandlers serves the room lifecycle journal.
type JournalHandlers struct {
	journal store.JournalReader
	log     *zerolog.Logger
}

// NewJournalHandlers creates journal handlers. A nil reader disables the endpoint.
func NewJournalHandlers(journal store.JournalReader, logger *zerolog.Logger) *JournalHandlers {
	return &JournalHandlers{journal: journal, log: logger}
}

// SessionResponse is one closed room.
type SessionResponse struct {
	RoomID           string `json:"roomId"`
	OpenedAt         string `json:"openedAt"`
	ClosedAt         string `json:"closedAt"`
	DurationSeconds  int64  `json:"durationSeconds"`
	PeakParticipants int    `json:"peakParticipants"`
	MessageCount     int    `json:"messageCount"`
}

// JournalResponse is the body of GET /api/journal.
type JournalResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Totals   TotalsResponse    `json:"totals"`
}

// TotalsResponse aggregates the whole journal.
type TotalsResponse struct {
	Sessions         int64 `json:"sessions"`
	Messages         int64 `json:"messages"`
	PeakParticipants int   `json:"peakParticipants"`
}

// List returns recently closed rooms.
// GET /api/journal?limit=N
func (h *JournalHandlers) List(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "journal_disabled"})
		return
	}

	limit := defaultJournalLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(n, maxJournalLimit)
	}

	ctx := c.Request.Context()
	sessions, err := h.journal.RecentSessions(ctx, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list room sessions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	totals, err := h.journal.Totals(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load journal totals")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := JournalResponse{
		Sessions: make([]SessionResponse, 0, len(sessions)),
		Totals: TotalsResponse{
			Sessions:         totals.Sessions,
			Messages:         totals.Messages,
			PeakParticipants: totals.PeakParticipants,
		},
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, SessionResponse{
			RoomID:           s.RoomID,
			OpenedAt:         s.OpenedAt.UTC().Format(time.RFC3339),
			ClosedAt:         s.ClosedAt.UTC().Format(time.RFC3339),
			DurationSeconds:  int64(s.Duration() / time.Second),
			PeakParticipants: s.PeakParticipants,
			MessageCount:     s.MessageCount,
		})
	}
	c.JSON(http.StatusOK, response)
}
