package app

import (
	"sync"

	"community_chat_service/pkg/metrics"
)

// Registry process wide set of authenticated connections.
// Only the auth success path inserts and only the close path removes.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]*Connection
	metrics *metrics.Metrics
}

// NewRegistry create an empty registry
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		conns:   make(map[string]*Connection),
		metrics: m,
	}
}

// Insert add an authenticated connection
func (r *Registry) Insert(c *Connection) {
	r.mu.Lock()
	_, exists := r.conns[c.ID]
	r.conns[c.ID] = c
	r.mu.Unlock()

	if !exists && r.metrics != nil {
		r.metrics.ActiveConnections.Inc()
	}
}

// Remove drop c, reports whether it was present
func (r *Registry) Remove(c *Connection) bool {
	r.mu.Lock()
	_, ok := r.conns[c.ID]
	delete(r.conns, c.ID)
	r.mu.Unlock()

	if ok && r.metrics != nil {
		r.metrics.ActiveConnections.Dec()
	}
	return ok
}

// Each call fn on a snapshot of the registry, stop when fn returns false.
// fn runs without the registry lock held.
func (r *Registry) Each(fn func(c *Connection) bool) {
	for _, c := range r.Snapshot() {
		if !fn(c) {
			return
		}
	}
}

// Snapshot copy of the current entries
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Len number of registered connections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
