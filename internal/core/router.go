package core

import "github.com/rs/zerolog"

// Router decides who gets notified about a domain action and with which
// event. It keeps no state of its own; every rule is a lookup or fan-out
// over the registry. Send errors mean "recipient offline" and are dropped.
type Router struct {
	registry *Registry
	log      *zerolog.Logger
}

// NewRouter builds a router over the given registry.
func NewRouter(registry *Registry, logger *zerolog.Logger) *Router {
	return &Router{registry: registry, log: logger}
}

// UserRegistered announces a freshly created account so clients refresh
// their user lists.
func (rt *Router) UserRegistered(userID int64) {
	rt.log.Debug().Int64("user_id", userID).Msg("routing user registration")
	rt.registry.Broadcast(EventStatusChanged)
}

// MessageCreated notifies about a new message. A message to the general
// channel goes to everyone online; a direct message goes to the receiver
// and back to the sender, each only if online.
func (rt *Router) MessageCreated(fromID, toID int64) {
	if toID == GeneralUserID {
		rt.registry.Broadcast(EventNewMessage)
		return
	}
	if err := rt.registry.Send(toID, EventNewMessage); err != nil {
		rt.log.Debug().Int64("user_id", toID).Msg("message receiver offline")
	}
	if err := rt.registry.Send(fromID, EventNewMessage); err != nil {
		rt.log.Debug().Int64("user_id", fromID).Msg("message sender offline")
	}
}

// MessagesRead notifies the receiver who read the messages, then everyone
// online so chat lists can refresh their unread counters.
func (rt *Router) MessagesRead(receiverID int64) {
	if err := rt.registry.Send(receiverID, EventMessageRead); err != nil {
		rt.log.Debug().Int64("user_id", receiverID).Msg("read receipt receiver offline")
	}
	rt.registry.Broadcast(EventMessageRead)
}

// StatusUpdated announces an explicit is_active change. When a connected
// user toggled itself inactive it is additionally told to close its push
// channel; the server does not sever the transport itself.
func (rt *Router) StatusUpdated(userID int64, active bool) {
	rt.registry.Broadcast(EventStatusChanged)
	if active {
		return
	}
	if err := rt.registry.Send(userID, EventDisconnected); err != nil {
		rt.log.Debug().Int64("user_id", userID).Msg("deactivated user offline")
	}
}

// UserKicked tells the kicked user to leave. Soft kick: the client is
// expected to close its own connection, the registry is not touched.
func (rt *Router) UserKicked(userID int64) {
	if err := rt.registry.Send(userID, EventKicked); err != nil {
		rt.log.Debug().Int64("user_id", userID).Msg("kicked user offline")
		return
	}
	rt.log.Info().Int64("user_id", userID).Msg("kick notification sent")
}

// UserBanned tells a banned user to leave, but only when it is both
// connected and still marked active. Calling it again sends the
// notification again. Same soft contract as UserKicked.
func (rt *Router) UserBanned(userID int64, active bool) {
	if !active {
		return
	}
	if err := rt.registry.Send(userID, EventBanned); err != nil {
		rt.log.Debug().Int64("user_id", userID).Msg("banned user offline")
		return
	}
	rt.log.Info().Int64("user_id", userID).Msg("ban notification sent")
}
