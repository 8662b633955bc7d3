package core

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/chatup/chatup-server/internal/metrics"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(testLogger(), metrics.New(prometheus.NewRegistry()))
}

// register adds a fresh connection with a roomy queue. The StatusChanged
// broadcast from the registration stays queued; drain it when the test does
// not care about it.
func register(t *testing.T, r *Registry, userID int64) *Conn {
	t.Helper()
	conn := NewConn(userID, 8)
	r.Register(conn)
	return conn
}

// drain empties queued events from all given connections.
func drain(conns ...*Conn) {
	for _, c := range conns {
		for len(c.Events) > 0 {
			<-c.Events
		}
	}
}

// collect returns everything currently queued on the connection.
func collect(c *Conn) []Event {
	var events []Event
	for {
		select {
		case ev := <-c.Events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func wantEvents(t *testing.T, c *Conn, want ...Event) {
	t.Helper()
	got := collect(c)
	if len(got) != len(want) {
		t.Fatalf("user %d: expected events %v, got %v", c.UserID, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("user %d: expected events %v, got %v", c.UserID, want, got)
		}
	}
}
