package core

import "github.com/rs/zerolog"

// Presence drives a user's online/offline transitions. The only states are
// offline and online; online is exactly "present in the registry". The
// banned flag lives in storage and is orthogonal to presence, so nothing
// here guards a banned user's reconnect; rejecting those is an upper
// layer's call.
type Presence struct {
	registry   *Registry
	sendBuffer int
	log        *zerolog.Logger
}

// NewPresence builds the lifecycle component over the shared registry.
// sendBuffer sizes each new connection's event queue.
func NewPresence(registry *Registry, sendBuffer int, logger *zerolog.Logger) *Presence {
	return &Presence{registry: registry, sendBuffer: sendBuffer, log: logger}
}

// Connect transitions userID to online: it creates the push handle and
// registers it, which broadcasts StatusChanged. The returned connection is
// owned by the caller's write loop until Disconnect.
func (p *Presence) Connect(userID int64) *Conn {
	conn := NewConn(userID, p.sendBuffer)
	p.log.Debug().Int64("user_id", userID).Msg("binding push channel")
	p.registry.Register(conn)
	return conn
}

// Disconnect transitions the owner of conn to offline and broadcasts
// StatusChanged. It is keyed by the handle, not the user id, so a late
// disconnect from a replaced connection leaves the replacement online.
// Safe to call from every trigger, any number of times.
func (p *Presence) Disconnect(conn *Conn) {
	p.registry.remove(conn)
}

// IsOnline reports live presence; this overrides any stored is_active flag
// in read APIs.
func (p *Presence) IsOnline(userID int64) bool {
	return p.registry.IsOnline(userID)
}
