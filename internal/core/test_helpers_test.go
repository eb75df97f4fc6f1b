package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/roomhub/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drain returns every event currently buffered for c.
func drain(c *Client) []*Event {
	var events []*Event
	for {
		select {
		case ev := <-c.Events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func startHub(t *testing.T, sink *Sink) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(sink, nil)
	go hub.Run(ctx)
	return hub
}

// settle waits until every operation queued so far has been applied.
func settle(t *testing.T, h *Hub) Snapshot {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := h.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

// connect registers a client and discards the events produced by its own registration.
func connect(t *testing.T, h *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id, "", 0)
	if err := h.Register(context.Background(), c); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	settle(t, h)
	return c
}

func dispatch(t *testing.T, h *Hub, c *Client, cmd *Command) {
	t.Helper()

	if err := h.Dispatch(context.Background(), c, cmd); err != nil {
		t.Fatalf("dispatch %v: %v", cmd.Kind, err)
	}
}

func kinds(events []*Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

// memoryStore records appended messages and can be told to fail or block.
type memoryStore struct {
	mu       sync.Mutex
	messages []store.Message
	err      error
	block    chan struct{}
	delay    time.Duration
	started  chan struct{}
	appended chan store.Message
}

func newMemoryStore() *memoryStore {
	return &memoryStore{appended: make(chan store.Message, 16)}
}

func (m *memoryStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if m.started != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.err != nil {
		return m.err
	}

	m.mu.Lock()
	msg.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, *msg)
	m.mu.Unlock()

	select {
	case m.appended <- *msg:
	default:
	}
	return nil
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
