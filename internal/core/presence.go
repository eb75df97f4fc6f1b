package core

// Presence pushes the global online-user view to every connection.
type Presence struct {
	registry *Registry
	deliver  func(ids []string, ev *Event)
}

// NewPresence builds a broadcaster that reads from registry and sends through deliver.
func NewPresence(registry *Registry, deliver func(ids []string, ev *Event)) *Presence {
	return &Presence{registry: registry, deliver: deliver}
}

// OnMembershipChanged recomputes the snapshot once and sends it as a single
// userList event to all registered connections.
func (p *Presence) OnMembershipChanged() {
	ev := &Event{
		Kind:  EventUserList,
		Users: p.registry.Snapshot(),
	}
	p.deliver(p.registry.IDs(), ev)
}
