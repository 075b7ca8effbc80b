package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики регистрируются один раз в реестре по умолчанию
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	incidentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "incidents_created_total",
			Help: "Total number of reported incidents",
		},
	)

	statusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_status_transitions_total",
			Help: "Accepted incident status transitions",
		},
		[]string{"from", "to"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notifications by channel and delivery status",
		},
		[]string{"channel", "status"},
	)
)

// IncidentCreated учитывает новый инцидент
func IncidentCreated() {
	incidentsCreatedTotal.Inc()
}

// StatusTransition учитывает принятую смену статуса
func StatusTransition(from, to string) {
	statusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// NotificationDispatched учитывает отправку уведомления
func NotificationDispatched(channel, status string) {
	notificationsTotal.WithLabelValues(channel, status).Inc()
}
