package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/csp-go/core/messaging"
	"github.com/codewandler/csp-go/core/metrics"
)

type messagingMetrics struct {
	queueDepth      *prometheus.GaugeVec
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
}

// NewMessagingMetrics creates and registers the queue and dispatch collectors.
func NewMessagingMetrics(reg prometheus.Registerer) messaging.Metrics {
	m := &messagingMetrics{
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "csp_queue_depth",
			Help: "Number of messages waiting in a queue",
		}, []string{"queue"}),

		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "csp_message_duration_seconds",
			Help:    "Message handler time in seconds",
			Buckets: defaultBuckets,
		}, []string{"message_type"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csp_messages_total",
			Help: "Total number of messages handled",
		}, []string{"message_type", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csp_message_panics_total",
			Help: "Total number of handler panics",
		}, []string{"message_type"}),

		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csp_messages_dropped_total",
			Help: "Total number of messages no handler accepted",
		}, []string{"queue", "message_type"}),
	}

	reg.MustRegister(
		m.queueDepth,
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.droppedTotal,
	)
	return m
}

func (m *messagingMetrics) QueueDepth(queueID string, depth int) {
	m.queueDepth.WithLabelValues(queueID).Set(float64(depth))
}

func (m *messagingMetrics) MessageDuration(msgType string) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(msgType))
}

func (m *messagingMetrics) MessageProcessed(msgType string, success bool) {
	m.messagesTotal.WithLabelValues(msgType, boolToStr(success)).Inc()
}

func (m *messagingMetrics) MessagePanic(msgType string) {
	m.panicTotal.WithLabelValues(msgType).Inc()
}

func (m *messagingMetrics) MessageDropped(queueID, msgType string) {
	m.droppedTotal.WithLabelValues(queueID, msgType).Inc()
}

var _ messaging.Metrics = (*messagingMetrics)(nil)
