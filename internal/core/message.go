package core

import "time"

// ChatMessage is the domain model for a chat message. It is immutable once
// created by the hub.
type ChatMessage struct {
	Author    string
	Room      string
	Content   string
	CreatedAt time.Time
}
