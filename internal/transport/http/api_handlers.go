package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomhub/internal/core"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PresenceResponse lists named connections keyed by connection ID.
type PresenceResponse struct {
	Users map[string]string `json:"users"`
	Count int               `json:"count"`
}

// PresenceHandlers serves read-only views of who is online.
type PresenceHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewPresenceHandlers creates a new presence handlers instance.
func NewPresenceHandlers(hub *core.Hub, logger *zerolog.Logger) *PresenceHandlers {
	return &PresenceHandlers{
		hub: hub,
		log: logger,
	}
}

// ListUsers returns the current presence snapshot.
// GET /api/presence
func (h *PresenceHandlers) ListUsers(c *gin.Context) {
	snapshot, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		writeSnapshotError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, PresenceResponse{
		Users: snapshot.Users,
		Count: len(snapshot.Users),
	})
}

func writeSnapshotError(c *gin.Context, logger *zerolog.Logger, err error) {
	if core.IsStopped(err) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "server shutting down"})
		return
	}
	logger.Error().Err(err).Msg("failed to read hub snapshot")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
