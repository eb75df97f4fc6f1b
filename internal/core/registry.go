package core

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

type connection struct {
	client *Client
	name   string
}

// Registry tracks every live connection and its display name.
//
// Registry is not safe for concurrent use; the Hub serializes access.
type Registry struct {
	conns map[string]*connection
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*connection)}
}

// Register adds a connection with no display name.
func (r *Registry) Register(c *Client) error {
	if _, exists := r.conns[c.ID]; exists {
		return fmt.Errorf("register %s: %w", c.ID, ErrDuplicateConnection)
	}
	r.conns[c.ID] = &connection{client: c}
	return nil
}

// SetName sets the display name of a registered connection.
func (r *Registry) SetName(id, name string) error {
	conn, ok := r.conns[id]
	if !ok {
		return fmt.Errorf("set name %s: %w", id, ErrUnknownConnection)
	}
	conn.name = name
	return nil
}

// Remove deletes a connection. Removing an unknown ID is a no-op that returns false.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.conns[id]; !ok {
		return false
	}
	delete(r.conns, id)
	return true
}

// Lookup returns the client registered under id.
func (r *Registry) Lookup(id string) (*Client, bool) {
	conn, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return conn.client, true
}

// Owns reports whether c is the client currently registered under its ID.
func (r *Registry) Owns(c *Client) bool {
	conn, ok := r.conns[c.ID]
	return ok && conn.client == c
}

// Name returns the display name of a connection.
func (r *Registry) Name(id string) (string, bool) {
	conn, ok := r.conns[id]
	if !ok {
		return "", false
	}
	return conn.name, true
}

// IDs returns every registered connection ID in sorted order.
func (r *Registry) IDs() []string {
	ids := lo.Keys(r.conns)
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.conns)
}

// Snapshot returns a fresh map of connection ID to display name.
// Connections that have not named themselves yet are not online users and
// are left out.
func (r *Registry) Snapshot() map[string]string {
	named := lo.PickBy(r.conns, func(_ string, conn *connection) bool {
		return conn.name != ""
	})
	return lo.MapValues(named, func(conn *connection, _ string) string {
		return conn.name
	})
}
