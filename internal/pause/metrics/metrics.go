package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsHandled        *prometheus.CounterVec
	FlowsPaused          prometheus.Counter
	FlowsResumed         *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	SchedulerEscalations prometheus.Counter
	PausedFlows          prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		EventsHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flowguard_events_handled_total",
			Help: "Total number of adverse events handled, by resolved action",
		}, []string{"action"}),
		FlowsPaused: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowguard_flows_paused_total",
			Help: "Total number of automation flows paused by the engine",
		}),
		FlowsResumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flowguard_flows_resumed_total",
			Help: "Total number of automation flows resumed, by mode",
		}, []string{"mode"}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowguard_notification_failures_total",
			Help: "Total number of notification dispatch failures (never fatal)",
		}),
		SchedulerEscalations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowguard_scheduler_escalations_total",
			Help: "Automatic resumptions abandoned after bounded retries",
		}),
		PausedFlows: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "flowguard_paused_flows",
			Help: "Current number of paused automation flows",
		}),
	}
}

func (m *Metrics) IncrementEventsHandled(action string) {
	m.EventsHandled.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementFlowsPaused(n int) {
	m.FlowsPaused.Add(float64(n))
	m.PausedFlows.Add(float64(n))
}

func (m *Metrics) IncrementFlowsResumed(mode string) {
	m.FlowsResumed.WithLabelValues(mode).Inc()
	m.PausedFlows.Dec()
}

func (m *Metrics) IncrementNotificationFailures() {
	m.NotificationFailures.Inc()
}

func (m *Metrics) IncrementSchedulerEscalations() {
	m.SchedulerEscalations.Inc()
}
