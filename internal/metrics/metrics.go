package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics records outcomes of the data-access operations.
type ServiceMetrics struct {
	operations    *prometheus.CounterVec
	notifications prometheus.Counter
}

// NewServiceMetrics registers the service metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	if reg == nil {
		return &ServiceMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conectahub_operations_total",
		Help: "Service operations by name and outcome.",
	}, []string{"operation", "outcome"})
	notifications := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conectahub_notifications_delivered_total",
		Help: "Per-recipient notification copies written by department fan-out.",
	})
	reg.MustRegister(operations, notifications)
	return &ServiceMetrics{
		operations:    operations,
		notifications: notifications,
	}
}

// Observe counts one execution of the named operation.
func (m *ServiceMetrics) Observe(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// AddNotifications counts delivered notification copies.
func (m *ServiceMetrics) AddNotifications(n int) {
	if m == nil || m.notifications == nil || n <= 0 {
		return
	}
	m.notifications.Add(float64(n))
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
