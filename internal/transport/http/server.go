package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/callengine"
	"github.com/vovakirdan/securecomm-server/internal/config"
	"github.com/vovakirdan/securecomm-server/internal/core"
	"github.com/vovakirdan/securecomm-server/internal/store"
)

// Deps are the optional backends behind the REST endpoints. Nil fields
// disable the matching endpoints.
type Deps struct {
	Journal  store.JournalReader
	Calls    callengine.Engine
	Sessions core.SessionIssuer
}

// NewServer builds an HTTP server with the WebSocket endpoint and the REST API.
func NewServer(hub *core.Hub, deps Deps, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))

	coord := hub.Coordinator()
	apiHandlers := NewAPIHandlers(coord)
	roomHandlers := NewRoomHandlers(coord, logger)
	callsHandlers := NewCallsHandlers(coord, deps.Calls, deps.Sessions, logger)
	journalHandlers := NewJournalHandlers(deps.Journal, logger)

	router.GET("/", apiHandlers.Status)
	router.GET("/health", apiHandlers.Health)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	api := router.Group("/api")
	{
		api.GET("/rooms", roomHandlers.ListRooms)
		api.GET("/rooms/:id", roomHandlers.GetRoom)
		api.GET("/rooms/:id/call-token", callsHandlers.CallToken)
		api.GET("/journal", journalHandlers.List)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
