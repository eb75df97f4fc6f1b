package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomhub/internal/config"
	"github.com/vovakirdan/roomhub/internal/core"
	"github.com/vovakirdan/roomhub/internal/proto"
)

// wireEvent mirrors proto.Outbound with raw data for assertions.
type wireEvent struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.RateLimit = config.RateLimit{}
	cfg.Sink.Driver = config.SinkNone
	return cfg
}

func startTestServer(t *testing.T, cfg config.Config) (*httptest.Server, *core.Hub) {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(nil, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, &cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

// stoppedHub returns a hub whose loop has already exited.
func stoppedHub(t *testing.T) *core.Hub {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(nil, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	return hub
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// dialClient connects and returns the connection ID from the connected event.
func dialClient(t *testing.T, ctx context.Context, url string) (*websocket.Conn, string) {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })

	ev := readEvent(t, ctx, conn, proto.EventConnected)
	var data proto.EventConnectedData
	decodeData(t, ev, &data)
	if data.ID == "" {
		t.Fatalf("connected event without id: %s", ev.Data)
	}
	return conn, data.ID
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s: %v", typ, err)
		}
		raw = payload
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readEvent reads until an event with the given name arrives, skipping others.
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) wireEvent {
	t.Helper()

	for {
		var ev wireEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			t.Fatalf("waiting for %s: %v", name, err)
		}
		if ev.Type != proto.OutboundTypeEvent {
			t.Fatalf("unexpected outbound type %q", ev.Type)
		}
		if ev.Event == name {
			return ev
		}
	}
}

// readUserList reads userList events until one satisfies ok.
func readUserList(t *testing.T, ctx context.Context, conn *websocket.Conn, ok func(map[string]string) bool) map[string]string {
	t.Helper()

	for {
		ev := readEvent(t, ctx, conn, proto.EventUserList)
		var users map[string]string
		decodeData(t, ev, &users)
		if ok(users) {
			return users
		}
	}
}

func decodeData(t *testing.T, ev wireEvent, v any) {
	t.Helper()

	if err := json.Unmarshal(ev.Data, v); err != nil {
		t.Fatalf("decode %s data %s: %v", ev.Event, ev.Data, err)
	}
}

// joinRoom sends joinRoom and waits for the caller's own presence update.
func joinRoom(t *testing.T, ctx context.Context, conn *websocket.Conn, id, username, room string) {
	t.Helper()

	send(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{Username: username, Room: room})
	readUserList(t, ctx, conn, func(users map[string]string) bool { return users[id] == username })
}

// waitForRoom polls the hub until room has the given number of members.
func waitForRoom(t *testing.T, hub *core.Hub, room string, members int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := hub.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if len(snap.Rooms[room]) == members {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %q never reached %d members", room, members)
}
