package core

import (
	"slices"

	"github.com/samber/lo"
)

// Room is the member set of one named room.
type Room struct {
	Name    string
	members map[string]struct{}
}

// NewRoom constructs a room with no members.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[string]struct{}),
	}
}

// Add inserts a connection into the room. Returns true if newly added.
func (r *Room) Add(id string) bool {
	if _, exists := r.members[id]; exists {
		return false
	}
	r.members[id] = struct{}{}
	return true
}

// Remove deletes a connection from the room. Returns true if removed.
func (r *Room) Remove(id string) bool {
	if _, exists := r.members[id]; !exists {
		return false
	}
	delete(r.members, id)
	return true
}

// Has reports whether the connection is a member.
func (r *Room) Has(id string) bool {
	_, ok := r.members[id]
	return ok
}

// Members returns the member IDs in sorted order.
func (r *Room) Members() []string {
	ids := lo.Keys(r.members)
	slices.Sort(ids)
	return ids
}

// Len returns the number of members.
func (r *Room) Len() int {
	return len(r.members)
}

// Empty returns true if no connections are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
