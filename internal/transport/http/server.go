package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomhub/internal/auth"
	"github.com/vovakirdan/roomhub/internal/config"
	"github.com/vovakirdan/roomhub/internal/core"
)

// NewServer builds an HTTP server with WebSocket and presence routes.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	wsHandler := NewWSHandler(hub, cfg, logger)
	router.GET("/ws", HandshakeAuthMiddleware(handshakeJWT(cfg), cfg.JWT.Required, logger), wsHandler.Handle)

	presenceHandlers := NewPresenceHandlers(hub, logger)
	roomHandlers := NewRoomHandlers(hub, logger)

	api := router.Group("/api")
	{
		api.GET("/presence", presenceHandlers.ListUsers)
		api.GET("/rooms", roomHandlers.ListRooms)
		api.GET("/rooms/:name", roomHandlers.GetRoom)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// handshakeJWT returns nil when no secret is configured, which disables auth.
func handshakeJWT(cfg *config.Config) *auth.JWTConfig {
	if cfg.JWT.Secret == "" {
		return nil
	}
	return &auth.JWTConfig{
		Secret:   []byte(cfg.JWT.Secret),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
