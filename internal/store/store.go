package store

import (
	"context"
	"time"
)

// Message represents a persisted chat message.
type Message struct {
	ID        int64
	Room      string
	Author    string
	Body      string
	CreatedAt time.Time
}

// MessageStore is an append-only sink for chat history. Nothing in the hub
// reads messages back.
type MessageStore interface {
	// AppendMessage durably records msg. Implementations may set msg.ID.
	AppendMessage(ctx context.Context, msg *Message) error

	// Close releases underlying resources.
	Close() error
}
