package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomhub/internal/proto"
)

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "lobby", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	joinPayload, err := json.Marshal(proto.JoinRoomData{Username: *user, Room: *room})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: joinPayload}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter to send. /invite <id> <room> and /accept <room> are supported. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch out.Event {
		case proto.EventConnected:
			var evt proto.EventConnectedData
			if err := json.Unmarshal(out.Data, &evt); err == nil {
				fmt.Printf("* your connection id is %s\n", evt.ID)
			}
		case proto.EventChatMessage:
			var evt proto.EventChatMessageData
			if err := json.Unmarshal(out.Data, &evt); err != nil {
				log.Printf("unmarshal chatMessage: %v", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", evt.Timestamp.Format("15:04:05"), evt.Username, evt.Content)
		case proto.EventWelcome, proto.EventTyping:
			var text string
			if err := json.Unmarshal(out.Data, &text); err == nil {
				fmt.Printf("* %s\n", text)
			}
		case proto.EventStopTyping:
		case proto.EventUserList:
			var users map[string]string
			if err := json.Unmarshal(out.Data, &users); err == nil {
				fmt.Printf("* online: %d\n", len(users))
				for id, name := range users {
					fmt.Printf("    %s  %s\n", id, name)
				}
			}
		case proto.EventRoomInvite:
			var evt proto.EventRoomInviteData
			if err := json.Unmarshal(out.Data, &evt); err == nil {
				fmt.Printf("* %s invites you to %s (type /accept %s)\n", evt.From, evt.Room, evt.Room)
			}
		default:
			fmt.Printf("event=%s data=%s\n", out.Event, out.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			inbound, err := parseLine(text)
			if err != nil {
				log.Printf("%v", err)
				continue
			}
			if err := wsjson.Write(ctx, conn, inbound); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func parseLine(text string) (proto.Inbound, error) {
	fields := strings.Fields(text)
	var (
		typ  string
		data any
	)
	switch {
	case fields[0] == "/invite" && len(fields) == 3:
		typ, data = proto.InboundTypeInviteToRoom, proto.InviteToRoomData{TargetSocketID: fields[1], Room: fields[2]}
	case fields[0] == "/accept" && len(fields) == 2:
		typ, data = proto.InboundTypeAcceptInvite, proto.AcceptInviteData{Room: fields[1]}
	case strings.HasPrefix(fields[0], "/"):
		return proto.Inbound{}, fmt.Errorf("unknown command %q", fields[0])
	default:
		typ, data = proto.InboundTypeChatMessage, proto.ChatMessageData{Content: text}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return proto.Inbound{}, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return proto.Inbound{Type: typ, Data: payload}, nil
}
