package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

func getJSON(t *testing.T, handler http.Handler, path string, wantStatus int, v any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != wantStatus {
		t.Fatalf("GET %s: expected status %d, got %d: %s", path, wantStatus, resp.Code, resp.Body.String())
	}
	if v == nil {
		return
	}
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("GET %s: failed to unmarshal response: %v", path, err)
	}
}

func TestListRooms(t *testing.T) {
	ts, hub := startTestServer(t, testConfig())
	ctx := testContext(t)

	connA, idA := dialClient(t, ctx, wsURL(ts))
	connB, idB := dialClient(t, ctx, wsURL(ts))
	connC, idC := dialClient(t, ctx, wsURL(ts))
	joinRoom(t, ctx, connA, idA, "alice", "lobby")
	joinRoom(t, ctx, connB, idB, "bob", "lobby")
	joinRoom(t, ctx, connC, idC, "carol", "attic")
	waitForRoom(t, hub, "lobby", 2)

	var list ListRoomsResponse
	getJSON(t, ts.Config.Handler, "/api/rooms", http.StatusOK, &list)

	if len(list.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %+v", list.Rooms)
	}
	if list.Rooms[0].Name != "attic" || list.Rooms[1].Name != "lobby" {
		t.Fatalf("rooms not sorted by name: %+v", list.Rooms)
	}
	if list.Rooms[1].Count != 2 {
		t.Fatalf("expected 2 members in lobby, got %d", list.Rooms[1].Count)
	}

	names := map[string]string{}
	for _, m := range list.Rooms[1].Members {
		names[m.ID] = m.Username
	}
	if names[idA] != "alice" || names[idB] != "bob" {
		t.Fatalf("unexpected lobby members: %+v", list.Rooms[1].Members)
	}
}

func TestGetRoom(t *testing.T) {
	ts, hub := startTestServer(t, testConfig())
	ctx := testContext(t)

	conn, id := dialClient(t, ctx, wsURL(ts))
	joinRoom(t, ctx, conn, id, "alice", "lobby")
	waitForRoom(t, hub, "lobby", 1)

	var room RoomResponse
	getJSON(t, ts.Config.Handler, "/api/rooms/lobby", http.StatusOK, &room)
	if room.Name != "lobby" || room.Count != 1 || room.Members[0].ID != id {
		t.Fatalf("unexpected room: %+v", room)
	}

	var errResp ErrorResponse
	getJSON(t, ts.Config.Handler, "/api/rooms/nowhere", http.StatusNotFound, &errResp)
	if errResp.Error != "room not found" {
		t.Fatalf("unexpected error body: %+v", errResp)
	}
}

func TestPresenceListsNamedConnections(t *testing.T) {
	ts, hub := startTestServer(t, testConfig())
	ctx := testContext(t)

	connA, idA := dialClient(t, ctx, wsURL(ts))
	connB, _ := dialClient(t, ctx, wsURL(ts))
	defer connB.Close(websocket.StatusNormalClosure, "done")
	joinRoom(t, ctx, connA, idA, "alice", "lobby")
	waitForRoom(t, hub, "lobby", 1)

	var presence PresenceResponse
	getJSON(t, ts.Config.Handler, "/api/presence", http.StatusOK, &presence)

	if presence.Count != 1 || presence.Users[idA] != "alice" {
		t.Fatalf("unnamed connection should be excluded: %+v", presence)
	}
}

func TestPresenceAfterHubStopped(t *testing.T) {
	cfg := testConfig()
	logger := zerolog.Nop()
	server := NewServer(stoppedHub(t), &cfg, &logger)

	var errResp ErrorResponse
	getJSON(t, server.Handler, "/api/presence", http.StatusServiceUnavailable, &errResp)
}
