package messaging

import "github.com/codewandler/csp-go/core/metrics"

// Metrics is the instrumentation surface of queues and dispatchers.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// QueueDepth reports the number of envelopes waiting in a queue. It is
	// called with the queue lock held and must not call back into the queue.
	QueueDepth(queueID string, depth int)

	// MessageDuration times one handler invocation.
	MessageDuration(msgType string) metrics.Timer
	// MessageProcessed counts a consumed message; success is false when the
	// handler returned an error or panicked.
	MessageProcessed(msgType string, success bool)
	MessagePanic(msgType string)
	// MessageDropped counts messages no link of the current chain accepted.
	MessageDropped(queueID, msgType string)
}

type nopMetrics struct{}

func (nopMetrics) QueueDepth(string, int)               {}
func (nopMetrics) MessageDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(string, bool)        {}
func (nopMetrics) MessagePanic(string)                  {}
func (nopMetrics) MessageDropped(string, string)        {}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
