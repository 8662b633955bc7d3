package core

// defaultSendBuffer is how many pending notifications a connection may
// accumulate before further pushes are dropped.
const defaultSendBuffer = 16

// Conn is one user's open push channel as seen by the core layer. The
// registry owns the entry from Register until removal; exactly one writer
// goroutine (the gateway's write loop) drains Events, which keeps
// per-recipient delivery ordered.
type Conn struct {
	UserID int64
	Events chan Event
}

// NewConn constructs a connection handle with the given queue capacity.
// A non-positive capacity falls back to the default.
func NewConn(userID int64, buffer int) *Conn {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Conn{
		UserID: userID,
		Events: make(chan Event, buffer),
	}
}

// push enqueues an event without blocking. It reports false when the queue
// is full, which the registry treats the same as the recipient being offline.
func (c *Conn) push(e Event) bool {
	select {
	case c.Events <- e:
		return true
	default:
		return false
	}
}
