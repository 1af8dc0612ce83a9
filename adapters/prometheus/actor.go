package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/csp-go/core/actor"
)

type actorMetrics struct {
	running      *prometheus.GaugeVec
	stoppedTotal *prometheus.CounterVec
	statesTotal  *prometheus.CounterVec
}

// NewActorMetrics creates and registers the actor lifecycle collectors.
func NewActorMetrics(reg prometheus.Registerer) actor.Metrics {
	m := &actorMetrics{
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "csp_actor_running",
			Help: "1 while the actor goroutine runs",
		}, []string{"actor"}),

		stoppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csp_actor_stopped_total",
			Help: "Total number of actor stops",
		}, []string{"actor", "success"}),

		statesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csp_actor_state_entered_total",
			Help: "Total number of state entries per actor and state",
		}, []string{"actor", "state"}),
	}

	reg.MustRegister(m.running, m.stoppedTotal, m.statesTotal)
	return m
}

func (m *actorMetrics) ActorStarted(name string) {
	m.running.WithLabelValues(name).Set(1)
}

func (m *actorMetrics) ActorStopped(name string, err error) {
	m.running.WithLabelValues(name).Set(0)
	m.stoppedTotal.WithLabelValues(name, boolToStr(err == nil)).Inc()
}

func (m *actorMetrics) StateEntered(actorName, state string) {
	m.statesTotal.WithLabelValues(actorName, state).Inc()
}

var _ actor.Metrics = (*actorMetrics)(nil)
