package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounting(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()
	if got := testutil.ToFloat64(m.ActiveConnections); got != 1 {
		t.Fatalf("active connections = %v, want 1", got)
	}

	m.Sent("status")
	m.Sent("status")
	m.Dropped("new_message")
	if got := testutil.ToFloat64(m.NotificationsSent.WithLabelValues("status")); got != 2 {
		t.Fatalf("sent(status) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.NotificationsDropped.WithLabelValues("new_message")); got != 1 {
		t.Fatalf("dropped(new_message) = %v, want 1", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ConnOpened()
	m.ConnClosed()
	m.Sent("status")
	m.Dropped("status")
}
