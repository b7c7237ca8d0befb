// Package chat implements the realtime core: the connection registry,
// the relay engine and read-state tracking. Transports and persistence
// plug in from the outside.
package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/beautyvilla/server/internal/model"
)

// Channel is the live bidirectional transport handle of one connected
// participant. Deliver must never block; a slow client buffers or
// drops, it does not stall the caller.
type Channel interface {
	Deliver(event model.Event)
}

type entry struct {
	role   model.Role
	connID uuid.UUID
	ch     Channel
}

// Registry maps participant ids to their live channels. It is
// process-local; cross-instance delivery is a documented limitation,
// not a bug. All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]entry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]entry)}
}

// Register inserts or replaces the entry for participantID. A new
// registration for the same id supersedes the old one; there is no
// multi-device fan-out.
func (r *Registry) Register(participantID int64, role model.Role, connID uuid.UUID, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[participantID] = entry{role: role, connID: connID, ch: ch}
}

// Unregister removes the entry if it still belongs to connID.
// Idempotent, and a stale pump shutting down after a reconnect cannot
// evict its replacement.
func (r *Registry) Unregister(participantID int64, connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.conns[participantID]; ok && e.connID == connID {
		delete(r.conns, participantID)
	}
}

// Lookup returns the participant's channel, if connected.
func (r *Registry) Lookup(participantID int64) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[participantID]
	return e.ch, ok
}

// ListByRole enumerates the ids of all currently connected
// participants with the given role.
func (r *Registry) ListByRole(role model.Role) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []int64
	for id, e := range r.conns {
		if e.role == role {
			ids = append(ids, id)
		}
	}

	return ids
}

// SendTo delivers an event to one participant and reports whether a
// channel was present. A miss is the expected offline path.
func (r *Registry) SendTo(participantID int64, event model.Event) bool {
	ch, ok := r.Lookup(participantID)
	if !ok {
		return false
	}

	ch.Deliver(event)
	return true
}

// SendToAgents delivers an event to every connected agent.
func (r *Registry) SendToAgents(event model.Event) {
	r.mu.RLock()
	channels := make([]Channel, 0, len(r.conns))
	for _, e := range r.conns {
		if e.role == model.RoleAgent {
			channels = append(channels, e.ch)
		}
	}
	r.mu.RUnlock()

	for _, ch := range channels {
		ch.Deliver(event)
	}
}
