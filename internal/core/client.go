package core

const defaultClientBuffer = 64

// Client is a live connection as seen by the core layer.
// ID is assigned by the transport and never changes. Identity is an optional
// display name vouched for by the auth layer at handshake time.
type Client struct {
	ID       string
	Identity string
	Events   chan *Event
}

// NewClient constructs a client with a buffered event channel.
// A non-positive buffer selects the default size.
func NewClient(id, identity string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Identity: identity,
		Events:   make(chan *Event, buffer),
	}
}
