package chat

import (
	"sync"

	"github.com/SlavaKuntsov/software-security/internal/domain"
)

// Registry maps live connection ids to user ids. It is the only in-process
// shared mutable state in the service and must be safe for concurrent
// insert, remove, and lookup.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]domain.UserID)}
}

// Add registers a connection for a user. A reconnect with the same
// connection id overwrites the previous entry.
func (r *Registry) Add(connID string, userID domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = userID
}

// Remove drops a connection. Removing an unknown id is a no-op.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
}

// Lookup returns the user behind a connection id.
func (r *Registry) Lookup(connID string) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.conns[connID]
	return id, ok
}

// ConnectionsFor returns all live connection ids of a user.
func (r *Registry) ConnectionsFor(userID domain.UserID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for conn, id := range r.conns {
		if id == userID {
			ids = append(ids, conn)
		}
	}
	return ids
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
