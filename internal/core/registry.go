package core

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/chatup/chatup-server/internal/metrics"
)

// Registry maps a user id to its open push connection. It is the only
// shared mutable structure in the process; all mutation happens under mu.
// A user is online iff it is present as a key.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]*Conn

	metrics *metrics.Metrics
	log     *zerolog.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *zerolog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		conns:   make(map[int64]*Conn),
		metrics: m,
		log:     logger,
	}
}

// Register inserts the connection under conn.UserID and broadcasts
// StatusChanged to every registered connection, the new one included.
// A second register for the same user replaces the first entry; the
// superseded handle is left to its owner's read loop to notice the
// transport going away.
func (r *Registry) Register(conn *Conn) {
	r.mu.Lock()
	_, replaced := r.conns[conn.UserID]
	r.conns[conn.UserID] = conn
	r.mu.Unlock()

	if replaced {
		// Last writer wins; the superseded handle is not closed here.
		r.log.Warn().Int64("user_id", conn.UserID).Msg("replaced existing connection")
	} else {
		r.metrics.ConnOpened()
		r.log.Info().Int64("user_id", conn.UserID).Msg("connection registered")
	}

	r.Broadcast(EventStatusChanged)
}

// Unregister removes the entry for userID if present and broadcasts
// StatusChanged to the remaining connections. Absent user is a no-op,
// so calling it twice is safe from any trigger.
func (r *Registry) Unregister(userID int64) {
	r.mu.Lock()
	_, ok := r.conns[userID]
	if ok {
		delete(r.conns, userID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	r.metrics.ConnClosed()
	r.log.Info().Int64("user_id", userID).Msg("connection unregistered")
	r.Broadcast(EventStatusChanged)
}

// remove drops the entry only if it still holds this exact connection.
// A disconnect from a handle that was already replaced must not evict
// its replacement.
func (r *Registry) remove(conn *Conn) {
	r.mu.Lock()
	current, ok := r.conns[conn.UserID]
	if ok && current == conn {
		delete(r.conns, conn.UserID)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	r.metrics.ConnClosed()
	r.log.Info().Int64("user_id", conn.UserID).Msg("connection unregistered")
	r.Broadcast(EventStatusChanged)
}

// IsOnline reports whether userID currently has a registered connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// OnlineCount returns the number of registered connections.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Send pushes an event to one user. Returns ErrNotOnline when the user has
// no registered connection; a full recipient queue is treated the same way.
func (r *Registry) Send(userID int64, event Event) error {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()

	if !ok {
		return ErrNotOnline
	}

	if !conn.push(event) {
		r.metrics.Dropped(event.Token())
		r.log.Debug().Int64("user_id", userID).Stringer("event", event).Msg("recipient queue full, dropping")
		return ErrNotOnline
	}

	r.metrics.Sent(event.Token())
	return nil
}

// Broadcast pushes an event to every registered connection. It iterates a
// snapshot taken at call time: connections registered during the fan-out may
// miss the event, removed ones are not contacted. A slow recipient is skipped
// rather than allowed to stall the rest.
func (r *Registry) Broadcast(event Event) {
	r.mu.RLock()
	snapshot := make([]*Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	for _, conn := range snapshot {
		if conn.push(event) {
			r.metrics.Sent(event.Token())
			continue
		}
		r.metrics.Dropped(event.Token())
		r.log.Debug().Int64("user_id", conn.UserID).Stringer("event", event).Msg("recipient queue full, dropping")
	}
}
