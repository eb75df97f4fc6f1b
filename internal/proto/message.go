package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeJoinRoom     = "joinRoom"
	InboundTypeGyan         = "gyan"
	InboundTypeChatMessage  = "chatMessage"
	InboundTypeTyping       = "typing"
	InboundTypeStopTyping   = "stopTyping"
	InboundTypeInviteToRoom = "inviteToRoom"
	InboundTypeAcceptInvite = "acceptInvite"

	OutboundTypeEvent = "event"

	EventConnected   = "connected"
	EventUserList    = "userList"
	EventWelcome     = "welcome"
	EventChatMessage = "chatMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventRoomInvite  = "roomInvite"
)

// JoinRoomData names the client and picks its room.
type JoinRoomData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// ChatMessageData is the object form of a chat message. Clients may also send
// the content as a bare JSON string.
type ChatMessageData struct {
	Content string `json:"content"`
}

// InviteToRoomData invites another connection into a room.
type InviteToRoomData struct {
	TargetSocketID string `json:"targetSocketId"`
	Room           string `json:"room"`
}

// AcceptInviteData accepts an invitation to a room.
type AcceptInviteData struct {
	Room string `json:"room"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// EventConnectedData tells a client its connection ID.
type EventConnectedData struct {
	ID string `json:"id"`
}

// EventChatMessageData is a chat message delivered to a room.
type EventChatMessageData struct {
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// EventRoomInviteData is an invitation delivered to a single connection.
type EventRoomInviteData struct {
	Room string `json:"room"`
	From string `json:"from"`
}
