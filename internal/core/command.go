package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom names the client and moves it into a room.
	CommandJoinRoom CommandKind = iota
	// CommandChatMessage delivers chat content to the client's current room.
	CommandChatMessage
	// CommandTyping tells the rest of the room the client is typing.
	CommandTyping
	// CommandStopTyping clears the typing hint.
	CommandStopTyping
	// CommandInvite invites another connection into a room.
	CommandInvite
	// CommandAcceptInvite moves the client into the room it was invited to.
	CommandAcceptInvite
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoinRoom:
		return "joinRoom"
	case CommandChatMessage:
		return "chatMessage"
	case CommandTyping:
		return "typing"
	case CommandStopTyping:
		return "stopTyping"
	case CommandInvite:
		return "inviteToRoom"
	case CommandAcceptInvite:
		return "acceptInvite"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
// Only the fields relevant to Kind are read.
type Command struct {
	Kind     CommandKind
	Username string
	Room     string
	Content  string
	Target   string
}

// validate reports ErrMalformedEvent when a required field is missing.
func (c *Command) validate() error {
	if c == nil {
		return ErrMalformedEvent
	}
	switch c.Kind {
	case CommandJoinRoom:
		if c.Username == "" || c.Room == "" {
			return ErrMalformedEvent
		}
	case CommandInvite:
		if c.Target == "" || c.Room == "" {
			return ErrMalformedEvent
		}
	case CommandAcceptInvite:
		if c.Room == "" {
			return ErrMalformedEvent
		}
	case CommandChatMessage, CommandTyping, CommandStopTyping:
	default:
		return ErrMalformedEvent
	}
	return nil
}
