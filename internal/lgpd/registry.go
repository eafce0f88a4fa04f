package lgpd

import (
	"context"
	"sync"
	"time"
)

// Registry owns the live reveal instances of the panel, keyed per session,
// entity and field, so that a revealed value never outlives its session and
// the auto-hide contract holds across requests. Nothing here is persisted:
// a process restart always comes back fully masked.
type Registry struct {
	mu     sync.Mutex
	fields map[registryKey]*FieldReveal
	groups map[registryKey]*GroupReveal

	client   *Client
	queue    *Queue
	autoHide time.Duration
}

type registryKey struct {
	SessionID  string
	EntityType EntityType
	EntityID   string
	Field      string
}

// NewRegistry builds a Registry over the platform client. autoHide <= 0
// falls back to DefaultAutoHide.
func NewRegistry(client *Client, queue *Queue, autoHide time.Duration) *Registry {
	if autoHide <= 0 {
		autoHide = DefaultAutoHide
	}
	return &Registry{
		fields:   map[registryKey]*FieldReveal{},
		groups:   map[registryKey]*GroupReveal{},
		client:   client,
		queue:    queue,
		autoHide: autoHide,
	}
}

// Field returns the reveal instance for one sensitive field, creating it
// masked on first use.
func (r *Registry) Field(sessionID string, entityType EntityType, entityID, field string) *FieldReveal {
	key := registryKey{SessionID: sessionID, EntityType: entityType, EntityID: entityID, Field: field}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fields[key]; ok {
		return f
	}
	f := NewFieldReveal(r.client, r.queue.ForSession(sessionID), entityType, entityID, field, WithAutoHide(r.autoHide))
	r.fields[key] = f
	return f
}

// Group returns the consolidated address reveal instance for one address,
// creating it masked on first use.
func (r *Registry) Group(sessionID string, entityType EntityType, entityID, addressID string) *GroupReveal {
	key := registryKey{SessionID: sessionID, EntityType: entityType, EntityID: entityID, Field: "address:" + addressID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[key]; ok {
		return g
	}
	g := NewGroupReveal(r.client, r.queue.ForSession(sessionID), entityType, entityID, addressID, WithGroupAutoHide(r.autoHide))
	r.groups[key] = g
	return g
}

// EvictSession drops every instance of a session, stopping timers and
// discarding values. Called on logout and session expiry.
func (r *Registry) EvictSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, f := range r.fields {
		if key.SessionID == sessionID {
			f.Close()
			delete(r.fields, key)
		}
	}
	for key, g := range r.groups {
		if key.SessionID == sessionID {
			g.Close()
			delete(r.groups, key)
		}
	}
}

// Sweep removes instances idle longer than maxIdle. Timers already reverted
// them to masked; this only frees memory.
func (r *Registry) Sweep(maxIdle time.Duration) {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, f := range r.fields {
		if f.idle(now) > maxIdle {
			f.Close()
			delete(r.fields, key)
		}
	}
	for key, g := range r.groups {
		if g.idle(now) > maxIdle {
			g.Close()
			delete(r.groups, key)
		}
	}
}

// Janitor runs Sweep on an interval until the context is cancelled.
func (r *Registry) Janitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
