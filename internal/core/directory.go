package core

import (
	"github.com/samber/lo"
)

// Directory maps rooms to their members and members to their room.
// A connection is in at most one room; a room exists only while it has members.
//
// Directory is not safe for concurrent use. The Hub owns it and serializes
// every call through its run loop.
type Directory struct {
	rooms  map[string]*Room
	roomOf map[string]string
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]*Room),
		roomOf: make(map[string]string),
	}
}

// Join moves a connection into room, leaving its previous room first.
// It is the only room transition: no leave notification is produced for the
// old room. Returns the previous room and whether the connection moved out of one.
func (d *Directory) Join(id, room string) (string, bool) {
	previous, had := d.roomOf[id]
	if had && previous == room {
		return previous, false
	}
	if had {
		d.removeMember(previous, id)
	}

	r, ok := d.rooms[room]
	if !ok {
		r = NewRoom(room)
		d.rooms[room] = r
	}
	r.Add(id)
	d.roomOf[id] = room

	return previous, had
}

// LeaveCurrent removes the connection from its room and returns the room it left.
func (d *Directory) LeaveCurrent(id string) (string, bool) {
	room, ok := d.roomOf[id]
	if !ok {
		return "", false
	}
	delete(d.roomOf, id)
	d.removeMember(room, id)
	return room, true
}

// RoomOf returns the connection's current room.
func (d *Directory) RoomOf(id string) (string, bool) {
	room, ok := d.roomOf[id]
	return room, ok
}

// MembersOf returns the sorted members of room, or nil if the room does not exist.
func (d *Directory) MembersOf(room string) []string {
	r, ok := d.rooms[room]
	if !ok {
		return nil
	}
	return r.Members()
}

// MembersExcept returns the members of room other than id.
func (d *Directory) MembersExcept(room, id string) []string {
	return lo.Without(d.MembersOf(room), id)
}

// Rooms returns a copy of every live room and its sorted members.
func (d *Directory) Rooms() map[string][]string {
	return lo.MapValues(d.rooms, func(r *Room, _ string) []string {
		return r.Members()
	})
}

func (d *Directory) removeMember(room, id string) {
	r, ok := d.rooms[room]
	if !ok {
		return
	}
	r.Remove(id)
	if r.Empty() {
		delete(d.rooms, room)
	}
}
