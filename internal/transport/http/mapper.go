package http

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/roomhub/internal/core"
	"github.com/vovakirdan/roomhub/internal/proto"
)

func inboundToCommand(client *core.Client, inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := decode(inbound.Data, &join); err != nil {
			return nil, err
		}
		username := join.Username
		if username == "" {
			username = client.Identity
		}
		if username == "" || join.Room == "" {
			return nil, fmt.Errorf("%w: username and room are required", core.ErrMalformedEvent)
		}
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			Username: username,
			Room:     join.Room,
		}, nil
	case proto.InboundTypeGyan, proto.InboundTypeChatMessage:
		content, err := decodeContent(inbound.Data)
		if err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:    core.CommandChatMessage,
			Content: content,
		}, nil
	case proto.InboundTypeTyping:
		return &core.Command{Kind: core.CommandTyping}, nil
	case proto.InboundTypeStopTyping:
		return &core.Command{Kind: core.CommandStopTyping}, nil
	case proto.InboundTypeInviteToRoom:
		var invite proto.InviteToRoomData
		if err := decode(inbound.Data, &invite); err != nil {
			return nil, err
		}
		if invite.TargetSocketID == "" || invite.Room == "" {
			return nil, fmt.Errorf("%w: targetSocketId and room are required", core.ErrMalformedEvent)
		}
		return &core.Command{
			Kind:   core.CommandInvite,
			Target: invite.TargetSocketID,
			Room:   invite.Room,
		}, nil
	case proto.InboundTypeAcceptInvite:
		var accept proto.AcceptInviteData
		if err := decode(inbound.Data, &accept); err != nil {
			return nil, err
		}
		if accept.Room == "" {
			return nil, fmt.Errorf("%w: room is required", core.ErrMalformedEvent)
		}
		return &core.Command{
			Kind: core.CommandAcceptInvite,
			Room: accept.Room,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", core.ErrMalformedEvent, inbound.Type)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", core.ErrMalformedEvent)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrMalformedEvent, err)
	}
	return nil
}

// decodeContent accepts either a bare JSON string or {"content": "..."}.
func decodeContent(data json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text, nil
	}
	var msg proto.ChatMessageData
	if err := decode(data, &msg); err != nil {
		return "", err
	}
	return msg.Content, nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: event.Kind.String(),
	}

	switch event.Kind {
	case core.EventConnected:
		out.Data = proto.EventConnectedData{ID: event.ConnectionID}
	case core.EventUserList:
		users := event.Users
		if users == nil {
			users = map[string]string{}
		}
		out.Data = users
	case core.EventWelcome, core.EventTyping:
		out.Data = event.Text
	case core.EventChatMessage:
		if event.Message != nil {
			out.Data = proto.EventChatMessageData{
				Username:  event.Message.Author,
				Content:   event.Message.Content,
				Timestamp: event.Message.CreatedAt,
			}
		}
	case core.EventRoomInvite:
		out.Data = proto.EventRoomInviteData{
			Room: event.Room,
			From: event.From,
		}
	case core.EventStopTyping:
	}

	return out
}
