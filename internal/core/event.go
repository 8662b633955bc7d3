package core

import "fmt"

// GeneralUserID is the reserved recipient for untargeted chat messages.
// It is a virtual identity: no connection is ever registered under it.
const GeneralUserID int64 = 0

// Event is a notification pushed to connected clients. Events carry no
// payload beyond their kind; the client re-queries the REST API to learn
// what changed.
type Event int

const (
	// EventStatusChanged notifies that some user's presence changed.
	EventStatusChanged Event = iota
	// EventNewMessage notifies a recipient (or everyone, for general chat)
	// that a message was created.
	EventNewMessage
	// EventMessageRead notifies that messages were marked as read.
	EventMessageRead
	// EventKicked asks the receiving client to leave the server.
	EventKicked
	// EventBanned asks the receiving client to leave the server for good.
	EventBanned
	// EventDisconnected tells the client the server considers it inactive
	// and expects it to close its push channel.
	EventDisconnected
)

// Wire tokens sent over the push channel. The client switches on the bare
// string; there is no envelope.
const (
	tokenStatus     = "status"
	tokenNewMessage = "new_message"
	tokenRead       = "read"
	tokenKick       = "kick"
	tokenBan        = "ban"
	tokenOffline    = "offline"
)

// Token returns the wire representation of the event.
func (e Event) Token() string {
	switch e {
	case EventStatusChanged:
		return tokenStatus
	case EventNewMessage:
		return tokenNewMessage
	case EventMessageRead:
		return tokenRead
	case EventKicked:
		return tokenKick
	case EventBanned:
		return tokenBan
	case EventDisconnected:
		return tokenOffline
	default:
		return ""
	}
}

func (e Event) String() string {
	if t := e.Token(); t != "" {
		return t
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ParseEvent maps a wire token back to an event. Used by clients and tests.
func ParseEvent(token string) (Event, error) {
	switch token {
	case tokenStatus:
		return EventStatusChanged, nil
	case tokenNewMessage:
		return EventNewMessage, nil
	case tokenRead:
		return EventMessageRead, nil
	case tokenKick:
		return EventKicked, nil
	case tokenBan:
		return EventBanned, nil
	case tokenOffline:
		return EventDisconnected, nil
	default:
		return 0, fmt.Errorf("unknown event token %q", token)
	}
}
