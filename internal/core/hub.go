package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const opQueueSize = 256

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opCommand
	opQuery
)

type op struct {
	kind   opKind
	client *Client
	cmd    *Command
	query  func()
}

// Snapshot is a read-only copy of hub state for observers outside the loop.
type Snapshot struct {
	Users map[string]string
	Rooms map[string][]string
}

// Hub routes client events. It owns the Registry and Directory and applies
// every mutation on a single goroutine in arrival order, so broadcasts within
// a room leave in the order their triggering events were processed.
type Hub struct {
	registry *Registry
	rooms    *Directory
	presence *Presence
	sink     *Sink
	ops      chan op
	done     chan struct{}
	now      func() time.Time
	log      *zerolog.Logger
}

// NewHub creates a new hub. sink may be nil to disable persistence.
func NewHub(sink *Sink, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		registry: NewRegistry(),
		rooms:    NewDirectory(),
		sink:     sink,
		ops:      make(chan op, opQueueSize),
		done:     make(chan struct{}),
		now:      time.Now,
		log:      logger,
	}
	h.presence = NewPresence(h.registry, h.deliver)
	return h
}

// Run processes operations until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case o := <-h.ops:
			h.apply(o)
		case <-ctx.Done():
			h.log.Debug().Int("connections", h.registry.Len()).Msg("hub stopped")
			return
		}
	}
}

// Register adds a client to the hub. The client receives its connection ID
// followed by the updated user list.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	return h.enqueue(ctx, op{kind: opRegister, client: c})
}

// Unregister removes a client from its room and from the registry.
// It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	_ = h.enqueue(context.Background(), op{kind: opUnregister, client: c})
}

// Dispatch queues a command issued by c.
func (h *Hub) Dispatch(ctx context.Context, c *Client, cmd *Command) error {
	return h.enqueue(ctx, op{kind: opCommand, client: c, cmd: cmd})
}

// Snapshot returns the current online users and room memberships.
func (h *Hub) Snapshot(ctx context.Context) (Snapshot, error) {
	result := make(chan Snapshot, 1)
	query := func() {
		result <- Snapshot{
			Users: h.registry.Snapshot(),
			Rooms: h.rooms.Rooms(),
		}
	}
	if err := h.enqueue(ctx, op{kind: opQuery, query: query}); err != nil {
		return Snapshot{}, err
	}

	select {
	case snap := <-result:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-h.done:
		return Snapshot{}, ErrHubStopped
	}
}

func (h *Hub) enqueue(ctx context.Context, o op) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.ops <- o:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) apply(o op) {
	switch o.kind {
	case opRegister:
		h.handleRegister(o.client)
	case opUnregister:
		h.handleUnregister(o.client)
	case opCommand:
		h.handleCommand(o.client, o.cmd)
	case opQuery:
		o.query()
	}
}

func (h *Hub) handleRegister(c *Client) {
	if err := h.registry.Register(c); err != nil {
		h.log.Error().Err(err).Str("client_id", c.ID).Msg("registry invariant violated")
		return
	}
	h.log.Debug().Str("client_id", c.ID).Int("connections", h.registry.Len()).Msg("client registered")

	h.send(c, &Event{Kind: EventConnected, ConnectionID: c.ID})
	h.presence.OnMembershipChanged()
}

func (h *Hub) handleUnregister(c *Client) {
	// A rejected duplicate must not evict the connection that owns the ID.
	if !h.registry.Owns(c) {
		return
	}

	room, left := h.rooms.LeaveCurrent(c.ID)
	h.registry.Remove(c.ID)

	logEvent := h.log.Debug().Str("client_id", c.ID).Int("connections", h.registry.Len())
	if left {
		logEvent = logEvent.Str("room", room)
	}
	logEvent.Msg("client unregistered")

	h.presence.OnMembershipChanged()
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	if !h.registry.Owns(c) {
		h.log.Debug().Err(ErrUnknownConnection).Str("client_id", c.ID).Msg("command from unregistered client dropped")
		return
	}
	if err := cmd.validate(); err != nil {
		h.log.Debug().Err(err).Str("client_id", c.ID).Msg("command dropped")
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.joinRoom(c, cmd.Username, cmd.Room)
	case CommandChatMessage:
		h.chatMessage(c, cmd.Content)
	case CommandTyping:
		h.typing(c)
	case CommandStopTyping:
		h.stopTyping(c)
	case CommandInvite:
		h.invite(c, cmd.Target, cmd.Room)
	case CommandAcceptInvite:
		h.acceptInvite(c, cmd.Room)
	}
}

func (h *Hub) joinRoom(c *Client, username, room string) {
	if err := h.registry.SetName(c.ID, username); err != nil {
		h.log.Debug().Err(err).Msg("join dropped")
		return
	}
	h.moveTo(c, room)

	h.presence.OnMembershipChanged()
	h.deliver(h.rooms.MembersExcept(room, c.ID), &Event{
		Kind: EventWelcome,
		Text: fmt.Sprintf("%s joined room: %s", username, room),
	})
}

func (h *Hub) acceptInvite(c *Client, room string) {
	h.moveTo(c, room)

	name, _ := h.registry.Name(c.ID)
	h.deliver(h.rooms.MembersExcept(room, c.ID), &Event{
		Kind: EventWelcome,
		Text: name + " joined the room",
	})
}

func (h *Hub) moveTo(c *Client, room string) {
	previous, moved := h.rooms.Join(c.ID, room)
	logEvent := h.log.Debug().Str("client_id", c.ID).Str("room", room)
	if moved {
		logEvent = logEvent.Str("previous_room", previous)
	}
	logEvent.Msg("client joined room")
}

func (h *Hub) chatMessage(c *Client, content string) {
	room, name, ok := h.currentRoom(c)
	if !ok {
		return
	}

	msg := &ChatMessage{
		Author:    name,
		Room:      room,
		Content:   content,
		CreatedAt: h.now(),
	}
	h.deliver(h.rooms.MembersOf(room), &Event{Kind: EventChatMessage, Message: msg})

	if h.sink != nil {
		h.sink.Enqueue(*msg)
	}
}

func (h *Hub) typing(c *Client) {
	room, name, ok := h.currentRoom(c)
	if !ok {
		return
	}
	h.deliver(h.rooms.MembersExcept(room, c.ID), &Event{
		Kind: EventTyping,
		Text: name + " is typing...",
	})
}

func (h *Hub) stopTyping(c *Client) {
	room, _, ok := h.currentRoom(c)
	if !ok {
		return
	}
	h.deliver(h.rooms.MembersExcept(room, c.ID), &Event{Kind: EventStopTyping})
}

func (h *Hub) invite(c *Client, target, room string) {
	recipient, ok := h.registry.Lookup(target)
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Str("target", target).Msg("invite target not connected")
		return
	}
	name, _ := h.registry.Name(c.ID)
	h.send(recipient, &Event{
		Kind: EventRoomInvite,
		Room: room,
		From: name,
	})
}

// currentRoom returns the client's room and display name, or false when the
// client has not joined a room yet.
func (h *Hub) currentRoom(c *Client) (string, string, bool) {
	room, ok := h.rooms.RoomOf(c.ID)
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Msg("client not in a room, event ignored")
		return "", "", false
	}
	name, _ := h.registry.Name(c.ID)
	return room, name, true
}

func (h *Hub) deliver(ids []string, ev *Event) {
	for _, id := range ids {
		if c, ok := h.registry.Lookup(id); ok {
			h.send(c, ev)
		}
	}
}

// send never blocks the loop: a client whose buffer is full misses the event.
func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.log.Warn().Str("client_id", c.ID).Stringer("event", ev.Kind).Msg("client buffer full, event dropped")
	}
}

// IsStopped reports whether err means the hub is no longer accepting work.
func IsStopped(err error) bool {
	return errors.Is(err, ErrHubStopped)
}
