package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventConnected tells a new connection its own ID.
	EventConnected EventKind = iota
	// EventUserList carries the global presence view.
	EventUserList
	// EventWelcome announces a newcomer to the rest of a room.
	EventWelcome
	// EventChatMessage delivers a chat message to a room.
	EventChatMessage
	// EventTyping notifies a room that someone is typing.
	EventTyping
	// EventStopTyping clears a typing notification.
	EventStopTyping
	// EventRoomInvite delivers an invitation to a single connection.
	EventRoomInvite
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventUserList:
		return "userList"
	case EventWelcome:
		return "welcome"
	case EventChatMessage:
		return "chatMessage"
	case EventTyping:
		return "typing"
	case EventStopTyping:
		return "stopTyping"
	case EventRoomInvite:
		return "roomInvite"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
// Users and Message are shared between all recipients and must be treated
// as read-only.
type Event struct {
	Kind         EventKind
	ConnectionID string            // EventConnected
	Users        map[string]string // EventUserList
	Text         string            // EventWelcome, EventTyping
	Message      *ChatMessage      // EventChatMessage
	Room         string            // EventRoomInvite
	From         string            // EventRoomInvite
}
