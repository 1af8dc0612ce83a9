// Package prometheus implements the messaging and actor metrics interfaces
// with Prometheus collectors.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/csp-go/core/metrics"
)

type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Handler latencies of in-process actors are short; buckets start at 10µs.
var defaultBuckets = []float64{
	.00001, .0000250, .00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1,
}

// Metrics bundles both implementations, registered on one registerer.
type Metrics struct {
	Messaging *messagingMetrics
	Actor     *actorMetrics
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Messaging: NewMessagingMetrics(reg).(*messagingMetrics),
		Actor:     NewActorMetrics(reg).(*actorMetrics),
	}
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
