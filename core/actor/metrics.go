package actor

// Metrics defines the instrumentation of actor lifecycles and state
// machines. All methods are thread-safe.
type Metrics interface {
	ActorStarted(name string)
	ActorStopped(name string, err error)
	// StateEntered is called each time a machine enters a state, including
	// re-entering the state it just left.
	StateEntered(actor, state string)
}

type nopMetrics struct{}

func (nopMetrics) ActorStarted(string)         {}
func (nopMetrics) ActorStopped(string, error)  {}
func (nopMetrics) StateEntered(string, string) {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
