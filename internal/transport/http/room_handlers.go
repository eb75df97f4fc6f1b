package http

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/roomhub/internal/core"
)

// RoomHandlers provides HTTP handlers for live room views.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// RoomMember is one occupant of a room.
type RoomMember struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	Name    string       `json:"name"`
	Count   int          `json:"count"`
	Members []RoomMember `json:"members"`
}

// ListRoomsResponse represents the list rooms response body.
type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// ListRooms returns every non-empty room sorted by name.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	snapshot, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		writeSnapshotError(c, h.log, err)
		return
	}

	rooms := lo.MapToSlice(snapshot.Rooms, func(name string, ids []string) RoomResponse {
		return toRoomResponse(name, ids, snapshot.Users)
	})
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })

	c.JSON(http.StatusOK, ListRoomsResponse{Rooms: rooms})
}

// GetRoom returns a single live room.
// GET /api/rooms/:name
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	name := c.Param("name")

	snapshot, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		writeSnapshotError(c, h.log, err)
		return
	}

	ids, ok := snapshot.Rooms[name]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	c.JSON(http.StatusOK, toRoomResponse(name, ids, snapshot.Users))
}

func toRoomResponse(name string, ids []string, users map[string]string) RoomResponse {
	return RoomResponse{
		Name:  name,
		Count: len(ids),
		Members: lo.Map(ids, func(id string, _ int) RoomMember {
			return RoomMember{ID: id, Username: users[id]}
		}),
	}
}
