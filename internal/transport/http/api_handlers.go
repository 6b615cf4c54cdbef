package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/securecomm-server/internal/core"
)

// APIHandlers serves the status and health endpoints.
type APIHandlers struct {
	coord *core.Coordinator
	now   func() time.Time
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(coord *core.Coordinator) *APIHandlers {
	return &APIHandlers{coord: coord, now: time.Now}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the body of the root endpoint.
type StatusResponse struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

// Status reports that the server is up along with live counters.
// GET /
func (h *APIHandlers) Status(c *gin.Context) {
	rooms, conns := h.coord.Counts()
	c.JSON(http.StatusOK, StatusResponse{
		Message:     "SecureComm Chat Server is running",
		Status:      "online",
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		Rooms:       rooms,
		Connections: conns,
	})
}

// Health reports liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
