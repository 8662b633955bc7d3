package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the counters exposed on /metrics.
//
// Tracked:
//   - current number of open push connections
//   - notifications delivered, by event token
//   - notifications dropped (recipient queue full), by event token
type Metrics struct {
	// ActiveConnections is a gauge of currently registered push channels.
	ActiveConnections prometheus.Gauge

	// NotificationsSent counts notifications enqueued for delivery.
	// Labels: event (status|new_message|read|kick|ban|offline)
	NotificationsSent *prometheus.CounterVec

	// NotificationsDropped counts notifications lost to slow consumers.
	// Labels: event
	NotificationsDropped *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatup_active_connections",
			Help: "Number of currently open push connections.",
		}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatup_notifications_sent_total",
			Help: "Notifications enqueued for delivery, by event.",
		}, []string{"event"}),
		NotificationsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatup_notifications_dropped_total",
			Help: "Notifications dropped because the recipient queue was full, by event.",
		}, []string{"event"}),
	}
}

// ConnOpened records a newly registered connection. Safe on a nil receiver.
func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.ActiveConnections.Inc()
}

// ConnClosed records a removed connection. Safe on a nil receiver.
func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.ActiveConnections.Dec()
}

// Sent records a delivered notification. Safe on a nil receiver.
func (m *Metrics) Sent(event string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(event).Inc()
}

// Dropped records a notification lost to a slow consumer. Safe on a nil receiver.
func (m *Metrics) Dropped(event string) {
	if m == nil {
		return
	}
	m.NotificationsDropped.WithLabelValues(event).Inc()
}
